// Package dataset turns parsed draw-history rows into immutable draw records.
package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/drawlens/internal/drawdate"
	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/model"
)

// Columns is the alias table of a master file resolved against its header.
// An empty name means the column is absent.
type Columns struct {
	DrawNumber string
	Date       string
	Numbers    string
	Line       string
}

// Dataset is a frozen set of draw records for one game.
type Dataset struct {
	Game    string
	Columns Columns
	Records []model.DrawRecord
	Issues  []model.Issue
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Records)
}

// ResolveColumns picks the first alias of each master column present in the header.
func ResolveColumns(tbl flatfile.Table, cols game.MasterColumns) Columns {
	var c Columns
	c.DrawNumber, _ = tbl.Resolve(cols.DrawNumber)
	c.Date, _ = tbl.Resolve(cols.Date)
	c.Numbers, _ = tbl.Resolve(cols.Numbers)
	c.Line, _ = tbl.Resolve(cols.Line)
	return c
}

// Build normalizes every row of tbl into a record, in source order. Problems
// are recorded as issues on the dataset; no row is dropped.
func Build(tbl flatfile.Table, p game.Profile) Dataset {
	cols := ResolveColumns(tbl, p.Master)
	ds := Dataset{
		Game:    p.ID,
		Columns: cols,
		Records: make([]model.DrawRecord, 0, tbl.Len()),
		Issues:  append([]model.Issue(nil), tbl.Issues...),
	}
	logger := log.WithFields(log.Fields{"game": p.ID, "table": tbl.Name})
	if cols.DrawNumber == "" || cols.Date == "" || cols.Numbers == "" {
		logger.WithField("header", tbl.Header).Warn("master table is missing expected columns")
	}

	seen := make(map[int]int, tbl.Len())
	for i, row := range tbl.Rows {
		line := i + 1
		rec, issues := buildRecord(row, cols, p, line)
		for _, issue := range issues {
			logger.WithFields(log.Fields{"row": line, "kind": issue.Kind}).Debug(issue.Detail)
		}
		ds.Issues = append(ds.Issues, issues...)
		if rec.DrawNumber > 0 {
			if first, dup := seen[rec.DrawNumber]; dup {
				issue := model.Issue{
					Line:   line,
					Kind:   model.IssueDuplicateDrawNumber,
					Detail: fmt.Sprintf("draw %d already seen on row %d", rec.DrawNumber, first),
				}
				logger.WithFields(log.Fields{"row": line, "draw": rec.DrawNumber}).Warn("duplicate draw number")
				ds.Issues = append(ds.Issues, issue)
			} else {
				seen[rec.DrawNumber] = line
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	sort.SliceStable(ds.Issues, func(i, j int) bool { return ds.Issues[i].Line < ds.Issues[j].Line })
	return ds
}

func buildRecord(row flatfile.Row, cols Columns, p game.Profile, line int) (model.DrawRecord, []model.Issue) {
	var issues []model.Issue
	rec := model.DrawRecord{Fields: row.Text()}

	if v, ok := row[cols.DrawNumber]; ok && cols.DrawNumber != "" {
		if n, ok := v.Int(); ok && n > 0 {
			rec.DrawNumber = n
		} else {
			issues = append(issues, model.Issue{Line: line, Kind: model.IssueParseFailure,
				Detail: fmt.Sprintf("draw number %q is not a positive integer", v.Text)})
		}
	} else {
		issues = append(issues, model.Issue{Line: line, Kind: model.IssueParseFailure, Detail: "draw number missing"})
	}

	if v, ok := row[cols.Date]; ok && cols.Date != "" {
		rec.RawDateText = v.Text
		n := drawdate.Normalize(v.Text)
		rec.Weekday = n.Weekday
		rec.CalendarDate = n.Date
		switch {
		case n.Date == nil:
			issues = append(issues, model.Issue{Line: line, Kind: model.IssueDateUnparseable,
				Detail: fmt.Sprintf("date %q could not be parsed", v.Text)})
		case n.Weekday != "" && !drawdate.WeekdayMatches(n.Weekday, *n.Date):
			issues = append(issues, model.Issue{Line: line, Kind: model.IssueWeekdayMismatch,
				Detail: fmt.Sprintf("weekday %q does not match %s", n.Weekday, n.Date.Weekday())})
		}
	} else {
		issues = append(issues, model.Issue{Line: line, Kind: model.IssueDateUnparseable, Detail: "date missing"})
	}

	if v, ok := row[cols.Numbers]; ok && cols.Numbers != "" {
		nums, bad := SplitNumbers(v.Text, p.DigitWidth, p.MultiNumber)
		rec.Numbers = nums
		for _, tok := range bad {
			issues = append(issues, model.Issue{Line: line, Kind: model.IssueParseFailure,
				Detail: fmt.Sprintf("number token %q is not numeric", tok)})
		}
	}

	if cols.Line != "" {
		if v, ok := row[cols.Line]; ok && v.Text != "" {
			if n, ok := v.Int(); ok {
				rec.Line = &n
			} else {
				issues = append(issues, model.Issue{Line: line, Kind: model.IssueParseFailure,
					Detail: fmt.Sprintf("line %q is not an integer", v.Text)})
			}
		}
	}
	return rec, issues
}

// SplitNumbers splits a numbers field into zero-padded tokens. Non-numeric
// tokens are kept verbatim and also returned in bad.
func SplitNumbers(text string, width int, multi bool) (nums, bad []string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var tokens []string
	if multi {
		tokens = strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == '-' || unicode.IsSpace(r)
		})
	} else {
		tokens = []string{text}
	}
	nums = make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if !isDigits(tok) {
			bad = append(bad, tok)
			nums = append(nums, tok)
			continue
		}
		nums = append(nums, PadNumber(tok, width))
	}
	return nums, bad
}

// PadNumber left-pads a digit string with zeros to width.
func PadNumber(tok string, width int) string {
	if n, err := strconv.Atoi(tok); err == nil && len(tok) > width {
		// Drop superfluous leading zeros but never below width.
		tok = strconv.Itoa(n)
	}
	if len(tok) >= width {
		return tok
	}
	return strings.Repeat("0", width-len(tok)) + tok
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Lines returns the distinct line values of the dataset in ascending order.
func (d Dataset) Lines() []int {
	set := map[int]struct{}{}
	for _, r := range d.Records {
		if r.Line != nil {
			set[*r.Line] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// IssueCounts tallies issues by kind.
func (d Dataset) IssueCounts() map[model.IssueKind]int {
	out := map[model.IssueKind]int{}
	for _, i := range d.Issues {
		out[i.Kind]++
	}
	return out
}

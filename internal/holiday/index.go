// Package holiday indexes holiday tables and joins them to draw records.
package holiday

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/drawlens/internal/drawdate"
	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/model"
)

// Strategy is the join key actually used by an index.
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategyDate   Strategy = "date"
	StrategyNumber Strategy = "number"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLabel lowercases, strips accents and collapses whitespace.
func NormalizeLabel(s string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// Index maps holiday labels to the set of join keys flagged with them.
type Index struct {
	strategy Strategy
	keys     map[string]map[string]struct{}
	labels   map[string]string
	entries  []model.HolidayEntry
}

// Build detects the join strategy from the table header and indexes every
// labelled row. With JoinAuto a draw-number column wins over a date column.
func Build(tbl flatfile.Table, cols game.HolidayColumns, join game.JoinStrategy) *Index {
	idx := &Index{
		keys:   map[string]map[string]struct{}{},
		labels: map[string]string{},
	}
	labelCol, hasLabel := tbl.Resolve(cols.Label)
	numberCol, hasNumber := tbl.Resolve(cols.DrawNumber)
	dateCol, hasDate := tbl.Resolve(cols.Date)

	idx.strategy = detect(join, hasNumber, hasDate)
	logger := log.WithFields(log.Fields{"table": tbl.Name, "strategy": idx.strategy})
	if !hasLabel {
		logger.Debug("holiday table has no label column")
		idx.strategy = StrategyNone
		return idx
	}
	logger.Debug("holiday join strategy selected")

	for _, row := range tbl.Rows {
		labelVal, ok := row[labelCol]
		if !ok || labelVal.Text == "" {
			continue
		}
		entry := model.HolidayEntry{Label: labelVal.Text}
		if hasDate {
			if v, ok := row[dateCol]; ok {
				entry.DateText = v.Text
				if d, ok := parseHolidayDate(v.Text); ok {
					entry.Date = &d
				}
			}
		}
		if hasNumber {
			if v, ok := row[numberCol]; ok {
				if n, ok := v.Int(); ok {
					entry.DrawNumber = &n
				}
			}
		}
		idx.entries = append(idx.entries, entry)

		label := NormalizeLabel(entry.Label)
		if _, ok := idx.labels[label]; !ok {
			idx.labels[label] = entry.Label
		}
		key, ok := entryKey(idx.strategy, entry)
		if !ok {
			continue
		}
		set, ok := idx.keys[label]
		if !ok {
			set = map[string]struct{}{}
			idx.keys[label] = set
		}
		set[key] = struct{}{}
	}
	return idx
}

func detect(join game.JoinStrategy, hasNumber, hasDate bool) Strategy {
	switch join {
	case game.JoinByNumber:
		if hasNumber {
			return StrategyNumber
		}
	case game.JoinByDate:
		if hasDate {
			return StrategyDate
		}
	default:
		if hasNumber {
			return StrategyNumber
		}
		if hasDate {
			return StrategyDate
		}
	}
	return StrategyNone
}

func parseHolidayDate(s string) (time.Time, bool) {
	return drawdate.ParseCriterion(s)
}

func entryKey(strategy Strategy, e model.HolidayEntry) (string, bool) {
	switch strategy {
	case StrategyNumber:
		if e.DrawNumber == nil {
			return "", false
		}
		return strconv.Itoa(*e.DrawNumber), true
	case StrategyDate:
		if e.Date != nil {
			return e.Date.Format("2006-01-02"), true
		}
		if k := rawDateKey(e.DateText); k != "" {
			return k, true
		}
	}
	return "", false
}

// rawDateKey keys unparseable dates by their date part so that identical
// malformed text on both sides still joins.
func rawDateKey(text string) string {
	part := drawdate.Normalize(text).DateText
	if part == "" {
		part = strings.TrimSpace(text)
	}
	if part == "" {
		return ""
	}
	return "raw:" + strings.ToLower(part)
}

// RecordKey returns the join key of a record under the index strategy.
func (idx *Index) RecordKey(r model.DrawRecord) (string, bool) {
	switch idx.strategy {
	case StrategyNumber:
		if r.DrawNumber <= 0 {
			return "", false
		}
		return strconv.Itoa(r.DrawNumber), true
	case StrategyDate:
		if r.CalendarDate != nil {
			return r.CalendarDate.Format("2006-01-02"), true
		}
		if k := rawDateKey(r.RawDateText); k != "" {
			return k, true
		}
	}
	return "", false
}

// Strategy returns the join strategy in use.
func (idx *Index) Strategy() Strategy {
	if idx == nil {
		return StrategyNone
	}
	return idx.strategy
}

// Keys returns the join-key set of a label. Unknown labels yield nil.
func (idx *Index) Keys(label string) map[string]struct{} {
	if idx == nil {
		return nil
	}
	return idx.keys[NormalizeLabel(label)]
}

// Matches reports whether r falls on the holiday named label.
func (idx *Index) Matches(label string, r model.DrawRecord) bool {
	keys := idx.Keys(label)
	if len(keys) == 0 {
		return false
	}
	key, ok := idx.RecordKey(r)
	if !ok {
		return false
	}
	_, ok = keys[key]
	return ok
}

// Labels returns the distinct holiday labels as first spelled, sorted.
func (idx *Index) Labels() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, 0, len(idx.labels))
	for _, l := range idx.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Entries returns the indexed holiday rows in source order.
func (idx *Index) Entries() []model.HolidayEntry {
	if idx == nil {
		return nil
	}
	return idx.entries
}

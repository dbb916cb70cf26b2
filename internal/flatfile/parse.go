package flatfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/drawlens/internal/model"
)

const maxLineSize = 1 << 20

// Table is a parsed flat file.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
	Issues []model.Issue
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the header contains name.
func (t Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Resolve returns the first alias present in the header.
func (t Table) Resolve(aliases []string) (string, bool) {
	for _, alias := range aliases {
		if t.HasColumn(alias) {
			return alias, true
		}
	}
	return "", false
}

// Parse parses text with a header line followed by data lines. Empty input
// or a header-only input yields zero rows.
func Parse(text string) Table {
	p := &parser{}
	for _, line := range strings.Split(text, "\n") {
		p.feed(line)
	}
	return p.table
}

// ParseReader parses flat text from r.
func ParseReader(r io.Reader) (Table, error) {
	p := &parser{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		p.feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Table{}, fmt.Errorf("failed to read flat file: %w", err)
	}
	return p.table, nil
}

type parser struct {
	table      Table
	haveHeader bool
	dataLines  int
}

func (p *parser) feed(line string) {
	line = strings.TrimRight(line, "\r")
	if !p.haveHeader {
		line = strings.TrimPrefix(line, "\ufeff")
		if strings.TrimSpace(line) == "" {
			return
		}
		p.table.Header = SplitLine(line)
		p.haveHeader = true
		return
	}
	if strings.TrimSpace(line) == "" {
		return
	}
	p.dataLines++
	values := SplitLine(line)
	if len(values) != len(p.table.Header) {
		p.table.Issues = append(p.table.Issues, model.Issue{
			Line:   p.dataLines,
			Kind:   model.IssueParseFailure,
			Detail: fmt.Sprintf("expected %d fields, got %d", len(p.table.Header), len(values)),
		})
	}
	row := make(Row, len(p.table.Header))
	for i, name := range p.table.Header {
		if i >= len(values) {
			break
		}
		row[name] = NewValue(values[i])
	}
	p.table.Rows = append(p.table.Rows, row)
}

// SplitLine splits a line on commas. A double quote toggles the inside-quotes
// state and is dropped; commas inside quotes are kept literally.
func SplitLine(line string) []string {
	var (
		values   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(values, strings.TrimSpace(current.String()))
}

// Package model defines shared data structures.
package model

import "time"

// DrawRecord is one row of a game's draw history. Records are built once at
// load time and must not be mutated afterwards; Numbers and Fields are shared
// between copies.
type DrawRecord struct {
	DrawNumber   int
	RawDateText  string
	Weekday      string
	CalendarDate *time.Time
	Numbers      []string
	Line         *int
	// Fields holds the trimmed source text of every column present in the row.
	Fields map[string]string
}

// HasDate reports whether the compound date field parsed to a calendar date.
func (r DrawRecord) HasDate() bool {
	return r.CalendarDate != nil
}

// Field returns the source text of a column.
func (r DrawRecord) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// HolidayEntry is one row of a holiday table.
type HolidayEntry struct {
	Date       *time.Time
	DateText   string
	Label      string
	DrawNumber *int
}

// QueryResult is the ordered output of a query.
type QueryResult struct {
	Records    []DrawRecord
	TotalCount int
}

// FrequencyEntry is one ranked number with its count and share.
type FrequencyEntry struct {
	Key        string
	Count      int
	Percentage float64
}

// LineBucket is one line of a line distribution.
type LineBucket struct {
	Line       int
	Count      int
	Percentage int
}

// ParityCounts summarizes odd/even numbers of a result set.
type ParityCounts struct {
	OddNumbers  int
	EvenNumbers int
	OddDraws    int
	EvenDraws   int
}

// RankedRow is one row of a pre-aggregated table ranked by its count column.
type RankedRow struct {
	Key    string
	Count  int
	Fields map[string]string
}

// Package pipeline filters, sorts and paginates query results.
package pipeline

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/model"
)

// SortKey selects the ordering value.
type SortKey string

const (
	SortByDate   SortKey = "date"
	SortByNumber SortKey = "number"
)

// RangeMonths lists the accepted trailing date ranges. Zero means all.
var RangeMonths = []int{0, 1, 3, 6, 12}

// PageSizes lists the page sizes offered to interactive callers.
var PageSizes = []int{10, 25, 50, 100}

const DefaultPageSize = 10

// Options configures one pipeline run.
type Options struct {
	// Months is the trailing range in months; 0 keeps every record.
	Months int
	// Line keeps only records tagged with this line when set.
	Line     *int
	SortBy   SortKey
	Desc     bool
	Page     int
	PageSize int
	// NumberSort picks the numeric value used by SortByNumber.
	NumberSort game.NumberSort
	// Now anchors the date range; zero means time.Now.
	Now time.Time
}

// Page is one slice of a filtered, sorted result.
type Page struct {
	Records    []model.DrawRecord
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
}

// ParseRange accepts "all", "", or a month count from RangeMonths, with an
// optional trailing "m".
func ParseRange(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "m"))
	if err != nil || !validMonths(n) {
		return 0, model.InvalidCriteria("range %q must be one of 1, 3, 6, 12 or all", s)
	}
	return n, nil
}

// ParseSortKey accepts "date" or "number".
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByDate:
		return SortByDate, nil
	case SortByNumber:
		return SortByNumber, nil
	}
	return "", model.InvalidCriteria("sort %q must be date or number", s)
}

func validMonths(n int) bool {
	for _, m := range RangeMonths {
		if m == n {
			return true
		}
	}
	return false
}

func (o Options) validate() error {
	if !validMonths(o.Months) {
		return model.InvalidCriteria("range of %d months is not supported", o.Months)
	}
	if o.Page < 1 {
		return model.InvalidCriteria("page %d must be at least 1", o.Page)
	}
	if o.PageSize < 1 {
		return model.InvalidCriteria("page size %d must be at least 1", o.PageSize)
	}
	switch o.SortBy {
	case "", SortByDate, SortByNumber:
	default:
		return model.InvalidCriteria("unknown sort key %q", o.SortBy)
	}
	return nil
}

// Apply runs range filter, line filter, stable sort and slicing, in that
// order. The input is not modified.
func Apply(records []model.DrawRecord, opts Options) (Page, error) {
	if err := opts.validate(); err != nil {
		return Page{}, err
	}
	sorted := Process(records, opts)
	return Page{
		Records:    Slice(sorted, opts.Page, opts.PageSize),
		TotalCount: len(sorted),
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalPages: TotalPages(len(sorted), opts.PageSize),
	}, nil
}

// Process returns the filtered and sorted sequence without slicing.
func Process(records []model.DrawRecord, opts Options) []model.DrawRecord {
	out := FilterRange(records, opts.Months, opts.Now)
	if opts.Line != nil {
		out = FilterLine(out, *opts.Line)
	}
	if opts.SortBy == "" {
		opts.SortBy = SortByDate
	}
	Sort(out, opts.SortBy, opts.NumberSort, opts.Desc)
	return out
}

// Cutoff returns midnight of now minus months. The day is clamped to the
// last day of the target month, so March 31 minus one month is February 28.
func Cutoff(now time.Time, months int) time.Time {
	first := time.Date(now.Year(), now.Month()-time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	d := now.Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// FilterRange keeps records dated on or after the cutoff. Months of zero
// keeps everything, including undated records; otherwise undated records
// are dropped. The result is always a fresh slice.
func FilterRange(records []model.DrawRecord, months int, now time.Time) []model.DrawRecord {
	out := make([]model.DrawRecord, 0, len(records))
	if months <= 0 {
		return append(out, records...)
	}
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := Cutoff(now, months)
	for _, r := range records {
		if r.CalendarDate != nil && !r.CalendarDate.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// FilterLine keeps records tagged with line.
func FilterLine(records []model.DrawRecord, line int) []model.DrawRecord {
	out := make([]model.DrawRecord, 0, len(records))
	for _, r := range records {
		if r.Line != nil && *r.Line == line {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders records in place, stably. Undated records sort as epoch zero
// and records without a numeric value sort as zero.
func Sort(records []model.DrawRecord, by SortKey, ns game.NumberSort, desc bool) {
	key := func(r model.DrawRecord) int64 {
		if by == SortByNumber {
			return int64(NumericValue(r, ns))
		}
		if r.CalendarDate == nil {
			return 0
		}
		return r.CalendarDate.Unix()
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := key(records[i]), key(records[j])
		if desc {
			return a > b
		}
		return a < b
	})
}

// NumericValue is the primary number of a record: its first number token,
// or its draw number for games sorted that way.
func NumericValue(r model.DrawRecord, ns game.NumberSort) int {
	if ns == game.SortDrawNumber {
		return r.DrawNumber
	}
	if len(r.Numbers) == 0 {
		return 0
	}
	n, err := strconv.Atoi(r.Numbers[0])
	if err != nil {
		return 0
	}
	return n
}

// TotalPages is ceil(total/size), never below one.
func TotalPages(total, size int) int {
	if size < 1 || total <= size {
		return 1
	}
	return (total + size - 1) / size
}

// Slice returns the 1-based page of items. Pages past the end are empty.
func Slice[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}
	pages := len(items) / size
	if len(items)%size != 0 {
		pages++
	}
	if page-1 >= pages {
		return []T{}
	}
	start := (page - 1) * size
	if size >= len(items)-start {
		return items[start:]
	}
	return items[start : start+size]
}

// Package query evaluates a single selector against a game's draw records.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/drawlens/internal/drawdate"
	"github.com/verte-zerg/drawlens/internal/holiday"
	"github.com/verte-zerg/drawlens/internal/model"
)

// Selector is the search dimension of a query.
type Selector string

const (
	ByDrawNumber Selector = "draw-number"
	ByDrawDate   Selector = "draw-date"
	ByWeekday    Selector = "weekday"
	ByHoliday    Selector = "holiday"
	ByDayOfMonth Selector = "day-of-month"
)

// Selectors lists every selector in display order.
var Selectors = []Selector{ByDrawNumber, ByDrawDate, ByWeekday, ByHoliday, ByDayOfMonth}

// ParseSelector accepts a selector name, ignoring case, dashes and underscores.
func ParseSelector(s string) (Selector, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	switch key {
	case "drawnumber", "number", "draw":
		return ByDrawNumber, nil
	case "drawdate", "date":
		return ByDrawDate, nil
	case "weekday", "day", "dow":
		return ByWeekday, nil
	case "holiday":
		return ByHoliday, nil
	case "dayofmonth", "dom":
		return ByDayOfMonth, nil
	}
	return "", model.InvalidCriteria("unknown selector %q", s)
}

// Criteria is one selector with its raw criterion value.
type Criteria struct {
	Selector Selector
	Value    string
}

func (c Criteria) String() string {
	return fmt.Sprintf("%s=%s", c.Selector, c.Value)
}

// Matcher reports whether a record satisfies compiled criteria.
type Matcher func(model.DrawRecord) bool

// Compile validates c and returns its matcher. Holiday criteria need idx;
// a nil index matches nothing.
func Compile(c Criteria, idx *holiday.Index) (Matcher, error) {
	value := strings.TrimSpace(c.Value)
	if value == "" {
		return nil, model.InvalidCriteria("%s requires a value", c.Selector)
	}
	switch c.Selector {
	case ByDrawNumber:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, model.InvalidCriteria("draw number %q is not a positive integer", value)
		}
		return func(r model.DrawRecord) bool { return r.DrawNumber == n }, nil

	case ByDrawDate:
		d, ok := drawdate.ParseCriterion(value)
		if !ok {
			return nil, model.InvalidCriteria("draw date %q is not a valid date", value)
		}
		return func(r model.DrawRecord) bool {
			return r.CalendarDate != nil && drawdate.SameDay(*r.CalendarDate, d)
		}, nil

	case ByWeekday:
		w, ok := drawdate.CanonicalWeekday(value)
		if !ok {
			return nil, model.InvalidCriteria("weekday %q is not recognised", value)
		}
		return func(r model.DrawRecord) bool {
			got, ok := drawdate.CanonicalWeekday(r.Weekday)
			return ok && got == w
		}, nil

	case ByHoliday:
		return func(r model.DrawRecord) bool { return idx.Matches(value, r) }, nil

	case ByDayOfMonth:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 31 {
			return nil, model.InvalidCriteria("day of month %q must be between 1 and 31", value)
		}
		dd := fmt.Sprintf("%02d", n)
		return func(r model.DrawRecord) bool {
			return r.CalendarDate != nil && drawdate.DayOfMonth(*r.CalendarDate) == dd
		}, nil
	}
	return nil, model.InvalidCriteria("unknown selector %q", c.Selector)
}

// Run returns the records matching c in source order.
func Run(records []model.DrawRecord, c Criteria, idx *holiday.Index) (model.QueryResult, error) {
	match, err := Compile(c, idx)
	if err != nil {
		return model.QueryResult{}, err
	}
	out := make([]model.DrawRecord, 0)
	for _, r := range records {
		if match(r) {
			out = append(out, r)
		}
	}
	return model.QueryResult{Records: out, TotalCount: len(out)}, nil
}

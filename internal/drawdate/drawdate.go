// Package drawdate splits compound draw date fields such as "Mon 04-Jul-1994"
// into a weekday token and a calendar date.
package drawdate

import (
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical day-month-year layout of the date part.
const Layout = "02-Jan-2006"

var monthIndex = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

var weekdayTokens = map[string]string{
	"mon": "Mon", "monday": "Mon",
	"tue": "Tue", "tues": "Tue", "tuesday": "Tue",
	"wed": "Wed", "wednesday": "Wed",
	"thu": "Thu", "thur": "Thu", "thurs": "Thu", "thursday": "Thu",
	"fri": "Fri", "friday": "Fri",
	"sat": "Sat", "saturday": "Sat",
	"sun": "Sun", "sunday": "Sun",
}

// Normalized is the result of splitting a compound date field. Date is nil
// when the date part could not be parsed; Weekday is still set when present.
type Normalized struct {
	Weekday  string
	DateText string
	Date     *time.Time
}

// Normalize extracts the leading weekday token verbatim and parses the
// trailing DD-Mon-YYYY part. It never fails; missing parts are left empty.
func Normalize(raw string) Normalized {
	fields := strings.Fields(raw)
	var n Normalized
	switch len(fields) {
	case 0:
		return n
	case 1:
		// A lone token is either a bare date or a bare weekday.
		if d, ok := ParseDate(fields[0]); ok {
			n.DateText = fields[0]
			n.Date = &d
			return n
		}
		n.Weekday = fields[0]
		return n
	}
	n.Weekday = fields[0]
	n.DateText = fields[1]
	if d, ok := ParseDate(fields[1]); ok {
		n.Date = &d
	}
	return n
}

// ParseDate parses DD-Mon-YYYY using the fixed month-name table. The result is
// midnight UTC. Day, month and year must all be valid and the date must exist.
func ParseDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := monthIndex[strings.ToLower(parts[1])]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year <= 0 {
		return time.Time{}, false
	}
	return validDate(year, month, day)
}

// ParseCriterion accepts a date typed by a caller: YYYY-MM-DD, DD-Mon-YYYY or
// a full compound field.
func ParseCriterion(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, true
	}
	if d, ok := ParseDate(s); ok {
		return d, true
	}
	if n := Normalize(s); n.Date != nil {
		return *n.Date, true
	}
	return time.Time{}, false
}

// CanonicalWeekday maps a weekday name in any case or length to its
// three-letter token.
func CanonicalWeekday(s string) (string, bool) {
	w, ok := weekdayTokens[strings.ToLower(strings.TrimSpace(s))]
	return w, ok
}

// WeekdayMatches reports whether token names the weekday of date.
func WeekdayMatches(token string, date time.Time) bool {
	w, ok := CanonicalWeekday(token)
	if !ok {
		return false
	}
	return w == date.Weekday().String()[:3]
}

// DayOfMonth returns the zero-padded day of month.
func DayOfMonth(date time.Time) string {
	return twoDigits(date.Day())
}

// Format renders a date in the DD-Mon-YYYY layout.
func Format(date time.Time) string {
	return date.Format(Layout)
}

// SameDay reports whether two dates fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func validDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

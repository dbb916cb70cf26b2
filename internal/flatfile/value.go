// Package flatfile parses comma-delimited text into header-keyed rows.
package flatfile

import (
	"math"
	"strconv"
	"strings"
)

// Value is a single field. Text keeps the trimmed source text so zero-padded
// tokens survive; IsNumber is set when the whole text parses as a number.
type Value struct {
	Text     string
	Number   float64
	IsNumber bool
}

// NewValue coerces text per field: numeric when the entire trimmed value is a
// finite number, text otherwise.
func NewValue(text string) Value {
	text = strings.TrimSpace(text)
	v := Value{Text: text}
	if text == "" {
		return v
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return v
	}
	v.Number = n
	v.IsNumber = true
	return v
}

func (v Value) String() string {
	return v.Text
}

// Int returns the value as an integer when it is a whole number.
func (v Value) Int() (int, bool) {
	if !v.IsNumber || v.Number != math.Trunc(v.Number) {
		return 0, false
	}
	return int(v.Number), true
}

// Row maps header names to values. A header with no value in the row is
// absent from the map, never zero.
type Row map[string]Value

// Get returns the first present field among names.
func (r Row) Get(names ...string) (Value, bool) {
	for _, name := range names {
		if v, ok := r[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Text returns the source text of every present field.
func (r Row) Text() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[k] = v.Text
	}
	return out
}

// Package export writes draw records as comma-delimited text.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/drawlens/internal/drawdate"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/model"
)

// Field keys starting with "@" read normalized record values; any other key
// reads the source column of that name.
const (
	FieldDrawNumber = "@draw_number"
	FieldRawDate    = "@raw_date"
	FieldWeekday    = "@weekday"
	FieldDate       = "@date"
	FieldNumbers    = "@numbers"
	FieldLine       = "@line"
)

// Resolve returns the text of one export field for r. Absent values are empty.
func Resolve(r model.DrawRecord, field string) string {
	switch field {
	case FieldDrawNumber:
		if r.DrawNumber <= 0 {
			return ""
		}
		return strconv.Itoa(r.DrawNumber)
	case FieldRawDate:
		return r.RawDateText
	case FieldWeekday:
		return r.Weekday
	case FieldDate:
		if r.CalendarDate == nil {
			return ""
		}
		return drawdate.Format(*r.CalendarDate)
	case FieldNumbers:
		return strings.Join(r.Numbers, ",")
	case FieldLine:
		if r.Line == nil {
			return ""
		}
		return strconv.Itoa(*r.Line)
	}
	v, _ := r.Field(field)
	return v
}

// Write writes a header row followed by one row per record. A value holding
// a comma is wrapped in quotes so the output re-parses to the same fields;
// nothing else is escaped. Rows are separated by "\n" with no trailing newline.
func Write(w io.Writer, columns []game.ExportColumn, records []model.DrawRecord) error {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if _, err := io.WriteString(w, strings.Join(header, ",")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	row := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			row[i] = quote(Resolve(r, c.Field))
		}
		if _, err := io.WriteString(w, "\n"+strings.Join(row, ",")); err != nil {
			return fmt.Errorf("failed to write draw %d: %w", r.DrawNumber, err)
		}
	}
	return nil
}

// String renders records with Write into a string.
func String(columns []game.ExportColumn, records []model.DrawRecord) string {
	var b strings.Builder
	_ = Write(&b, columns, records)
	return b.String()
}

func quote(v string) string {
	if strings.Contains(v, ",") {
		return `"` + v + `"`
	}
	return v
}

// FileName is the default export file name for a game on day.
func FileName(gameID string, day time.Time) string {
	return fmt.Sprintf("%s-search-%s.csv", gameID, day.Format("2006-01-02"))
}

// OutputPath returns out unchanged unless it names a directory, in which case
// the default file name is joined to it.
func OutputPath(out string, isDir bool, gameID string, day time.Time) string {
	if isDir {
		return filepath.Join(out, FileName(gameID, day))
	}
	return out
}

package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCriteria reports an empty or malformed value for the active selector
	// or pipeline option.
	ErrInvalidCriteria = errors.New("invalid criteria")
	// ErrLoadFailure wraps collaborator I/O errors. The dataset paired with it is empty.
	ErrLoadFailure = errors.New("load failure")
	// ErrEmptyDataset marks a loaded table with no rows. It is informational.
	ErrEmptyDataset = errors.New("empty dataset")
)

// IssueKind classifies problems absorbed while parsing or normalizing.
type IssueKind string

const (
	IssueParseFailure        IssueKind = "parse_failure"
	IssueDateUnparseable     IssueKind = "date_unparseable"
	IssueWeekdayMismatch     IssueKind = "weekday_mismatch"
	IssueDuplicateDrawNumber IssueKind = "duplicate_draw_number"
)

// Issue records a problem with a single row. Line is 1-based within the data
// rows (the header is not counted).
type Issue struct {
	Line   int
	Kind   IssueKind
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("row %d: %s: %s", i.Line, i.Kind, i.Detail)
}

// InvalidCriteria builds an error wrapping ErrInvalidCriteria.
func InvalidCriteria(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCriteria, fmt.Sprintf(format, args...))
}

// Package game holds the per-game configuration that parameterizes the engine.
package game

import (
	"fmt"
	"strings"
)

// JoinStrategy selects how holiday rows are matched to draws.
type JoinStrategy string

const (
	// JoinAuto detects the strategy from the holiday table header.
	JoinAuto JoinStrategy = "auto"
	// JoinByDate matches the holiday date against the draw's calendar date.
	JoinByDate JoinStrategy = "date"
	// JoinByNumber matches the holiday draw number against the draw number.
	JoinByNumber JoinStrategy = "number"
)

// NumberSort names the value used when sorting results by number.
type NumberSort string

const (
	SortFirstNumber NumberSort = "first_number"
	SortDrawNumber  NumberSort = "draw_number"
)

// MasterColumns lists the aliases of each draw-history column.
type MasterColumns struct {
	DrawNumber []string `yaml:"draw_number"`
	Date       []string `yaml:"date"`
	Numbers    []string `yaml:"numbers"`
	Line       []string `yaml:"line"`
}

// HolidayColumns lists the aliases of each holiday-table column.
type HolidayColumns struct {
	Label      []string `yaml:"label"`
	Date       []string `yaml:"date"`
	DrawNumber []string `yaml:"draw_number"`
}

// BucketColumns describes a table pre-aggregated by (bucket, number, count).
type BucketColumns struct {
	Bucket []string `yaml:"bucket"`
	Number []string `yaml:"number"`
	Count  []string `yaml:"count"`
}

// RankColumns describes a table ranked by a count column.
type RankColumns struct {
	Key   []string `yaml:"key"`
	Count []string `yaml:"count"`
}

// Files names the flat files of a game. Names are given without extension.
type Files struct {
	Master   string `yaml:"master"`
	Holidays string `yaml:"holidays"`
	DOW      string `yaml:"dow"`
	DOM      string `yaml:"dom"`
	Pairs    string `yaml:"pairs"`
	Trending string `yaml:"trending"`
	Weekly   string `yaml:"weekly"`
}

// Profile is the tagged configuration for one game.
type Profile struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix"`
	// DigitWidth is the zero-padding width of each number token.
	DigitWidth int `yaml:"digit_width"`
	// MultiNumber marks games whose numbers field holds a list.
	MultiNumber bool         `yaml:"multi_number"`
	HasLine     bool         `yaml:"has_line"`
	LineCount   int          `yaml:"line_count"`
	HolidayJoin JoinStrategy `yaml:"holiday_join"`
	NumberSort  NumberSort   `yaml:"number_sort"`

	Files         Files          `yaml:"files"`
	Master        MasterColumns  `yaml:"master_columns"`
	Holiday       HolidayColumns `yaml:"holiday_columns"`
	DOWStats      BucketColumns  `yaml:"dow_columns"`
	DOMStats      BucketColumns  `yaml:"dom_columns"`
	HolidayStats  BucketColumns  `yaml:"holiday_stats_columns"`
	PairColumns   RankColumns    `yaml:"pair_columns"`
	TrendColumns  RankColumns    `yaml:"trending_columns"`
	ExportColumns []ExportColumn `yaml:"export_columns"`
}

// ExportColumn maps an output header to a source field or a derived value
// (see export.Resolve).
type ExportColumn struct {
	Header string `yaml:"header"`
	Field  string `yaml:"field"`
}

// Validate checks that a profile is usable.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("game profile: id is required")
	}
	if p.DigitWidth < 0 {
		return fmt.Errorf("game %s: digit_width must be >= 0", p.ID)
	}
	if p.HasLine && p.LineCount <= 0 {
		return fmt.Errorf("game %s: line_count must be > 0 when has_line is set", p.ID)
	}
	switch p.HolidayJoin {
	case "", JoinAuto, JoinByDate, JoinByNumber:
	default:
		return fmt.Errorf("game %s: unknown holiday_join %q", p.ID, p.HolidayJoin)
	}
	switch p.NumberSort {
	case "", SortFirstNumber, SortDrawNumber:
	default:
		return fmt.Errorf("game %s: unknown number_sort %q", p.ID, p.NumberSort)
	}
	if len(p.Master.DrawNumber) == 0 || len(p.Master.Date) == 0 || len(p.Master.Numbers) == 0 {
		return fmt.Errorf("game %s: master_columns need draw_number, date and numbers aliases", p.ID)
	}
	return nil
}

// withDefaults fills file names from the prefix and empty aliases from the
// shared defaults.
func (p Profile) withDefaults() Profile {
	if p.Prefix == "" {
		p.Prefix = p.ID
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.HolidayJoin == "" {
		p.HolidayJoin = JoinAuto
	}
	if p.NumberSort == "" {
		p.NumberSort = SortFirstNumber
	}
	f := &p.Files
	setDefault(&f.Master, p.Prefix+"master")
	setDefault(&f.Holidays, p.Prefix+"holidays")
	setDefault(&f.DOW, p.Prefix+"nctrdow")
	setDefault(&f.DOM, p.Prefix+"nctrdom")
	setDefault(&f.Pairs, p.Prefix+"cpairs")
	setDefault(&f.Trending, p.Prefix+"nctr")
	setDefault(&f.Weekly, p.Prefix+"week")

	setAliases(&p.Master.DrawNumber, "DrawNo", "DrawNos")
	setAliases(&p.Master.Date, "DrawDates", "DrawDate")
	setAliases(&p.Master.Numbers, "Nums", "AllNos")
	setAliases(&p.Master.Line, "Line")
	setAliases(&p.Holiday.Label, "Holiday")
	setAliases(&p.Holiday.Date, "Date", "DrawDates")
	setAliases(&p.Holiday.DrawNumber, "DrawNumber", "DrawNo", "No")
	setAliases(&p.DOWStats.Bucket, "Day")
	setAliases(&p.DOWStats.Number, "No", "Num")
	setAliases(&p.DOWStats.Count, "Played", "Counter")
	setAliases(&p.DOMStats.Bucket, "DOM", "Day")
	setAliases(&p.DOMStats.Number, "No", "Num")
	setAliases(&p.DOMStats.Count, "Played", "Counter")
	setAliases(&p.HolidayStats.Bucket, "Holiday")
	setAliases(&p.HolidayStats.Number, "Number", "No", "Num")
	setAliases(&p.HolidayStats.Count, "Counter", "Played")
	setAliases(&p.PairColumns.Key, "Combinations", "Combi")
	setAliases(&p.PairColumns.Count, "Played", "Play")
	setAliases(&p.TrendColumns.Key, "No")
	setAliases(&p.TrendColumns.Count, "PrvAllDr")
	if len(p.ExportColumns) == 0 {
		p.ExportColumns = []ExportColumn{
			{Header: "DrawNo", Field: "@draw_number"},
			{Header: "DrawDates", Field: "@raw_date"},
			{Header: "Nums", Field: "@numbers"},
		}
		if p.HasLine {
			p.ExportColumns = append(p.ExportColumns, ExportColumn{Header: "Line", Field: "@line"})
		}
	}
	return p
}

func setDefault(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

func setAliases(target *[]string, values ...string) {
	if len(*target) == 0 {
		*target = values
	}
}

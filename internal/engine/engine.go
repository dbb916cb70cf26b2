// Package engine runs searches and statistics for one game over its loaded
// tables. An Engine is built once and never mutated, so it may be shared
// between goroutines.
package engine

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/drawlens/internal/dataset"
	"github.com/verte-zerg/drawlens/internal/export"
	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/holiday"
	"github.com/verte-zerg/drawlens/internal/loader"
	"github.com/verte-zerg/drawlens/internal/model"
	"github.com/verte-zerg/drawlens/internal/pipeline"
	"github.com/verte-zerg/drawlens/internal/query"
	"github.com/verte-zerg/drawlens/internal/stats"
)

// Engine glues a game profile to its dataset, holiday index and auxiliary tables.
type Engine struct {
	profile  game.Profile
	data     dataset.Dataset
	holidays *holiday.Index
	tables   loader.Bundle
}

// New builds the dataset and holiday index from b.
func New(p game.Profile, b loader.Bundle) *Engine {
	e := &Engine{
		profile:  p,
		data:     dataset.Build(b.Master, p),
		holidays: holiday.Build(b.Holidays, p.Holiday, p.HolidayJoin),
		tables:   b,
	}
	log.WithFields(log.Fields{
		"game":     p.ID,
		"records":  e.data.Len(),
		"issues":   len(e.data.Issues),
		"holidays": e.holidays.Strategy(),
	}).Debug("engine ready")
	return e
}

// Load loads the tables of p through l and builds an engine. On failure the
// engine is still returned, empty, together with the load error.
func Load(ctx context.Context, l loader.Loader, p game.Profile) (*Engine, error) {
	b, err := loader.LoadGame(ctx, l, p)
	if err != nil {
		return New(p, loader.Bundle{}), err
	}
	return New(p, b), nil
}

// Profile returns the game profile.
func (e *Engine) Profile() game.Profile { return e.profile }

// Dataset returns the loaded records and the issues found while building them.
func (e *Engine) Dataset() dataset.Dataset { return e.data }

// Holidays returns the holiday index.
func (e *Engine) Holidays() *holiday.Index { return e.holidays }

// Tables returns the raw loaded tables.
func (e *Engine) Tables() loader.Bundle { return e.tables }

// Query evaluates c over the whole dataset.
func (e *Engine) Query(c query.Criteria) (model.QueryResult, error) {
	return query.Run(e.data.Records, c, e.holidays)
}

// SearchResult is a query result together with one page of it.
type SearchResult struct {
	Criteria query.Criteria
	Result   model.QueryResult
	Page     pipeline.Page
}

// Search runs c and then the pipeline with opts. The number sort of the game
// profile is used unless opts sets one.
func (e *Engine) Search(c query.Criteria, opts pipeline.Options) (SearchResult, error) {
	res, err := e.Query(c)
	if err != nil {
		return SearchResult{}, err
	}
	if opts.NumberSort == "" {
		opts.NumberSort = e.profile.NumberSort
	}
	page, err := pipeline.Apply(res.Records, opts)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Criteria: c, Result: res, Page: page}, nil
}

// All runs the pipeline over every record, without a selector.
func (e *Engine) All(opts pipeline.Options) (SearchResult, error) {
	if opts.NumberSort == "" {
		opts.NumberSort = e.profile.NumberSort
	}
	page, err := pipeline.Apply(e.data.Records, opts)
	if err != nil {
		return SearchResult{}, err
	}
	records := append([]model.DrawRecord(nil), e.data.Records...)
	res := model.QueryResult{Records: records, TotalCount: len(records)}
	return SearchResult{Result: res, Page: page}, nil
}

// TopNumbers re-ranks the pre-aggregated table backing sel: day-of-week
// counts for weekday, day-of-month counts for day-of-month and the holiday
// table for holiday. Other selectors have no such table.
func (e *Engine) TopNumbers(sel query.Selector, value string, n int) ([]model.FrequencyEntry, error) {
	var (
		tbl  flatfile.Table
		cols game.BucketColumns
	)
	switch sel {
	case query.ByWeekday:
		tbl, cols = e.tables.DOW, e.profile.DOWStats
	case query.ByDayOfMonth:
		tbl, cols = e.tables.DOM, e.profile.DOMStats
	case query.ByHoliday:
		tbl, cols = e.tables.Holidays, e.profile.HolidayStats
	default:
		return nil, model.InvalidCriteria("%s has no top-numbers table", sel)
	}
	if _, err := query.Compile(query.Criteria{Selector: sel, Value: value}, e.holidays); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = stats.DefaultTopN
	}
	return stats.TopNumbers(tbl, cols, value, n, e.profile.DigitWidth), nil
}

// Report aggregates a result set: line histogram or parity, plus number frequency.
func (e *Engine) Report(records []model.DrawRecord, top int) stats.Report {
	return stats.BuildReport(records, e.profile, top)
}

// HolidayLabels lists the distinct holiday labels.
func (e *Engine) HolidayLabels() []string {
	return e.holidays.Labels()
}

// Lines lists the distinct line values present in the dataset.
func (e *Engine) Lines() []int {
	return e.data.Lines()
}

// Pairs ranks the pairs table by its count column.
func (e *Engine) Pairs() []model.RankedRow {
	return stats.RankTable(e.tables.Pairs, e.profile.PairColumns)
}

// Trending ranks the trending-numbers table by its count column.
func (e *Engine) Trending() []model.RankedRow {
	return stats.RankTable(e.tables.Trending, e.profile.TrendColumns)
}

// Weekly returns the trailing rows of the weekly table.
func (e *Engine) Weekly() []flatfile.Row {
	return stats.Tail(e.tables.Weekly, stats.WeeklyRows)
}

// Export writes records with the profile export columns.
func (e *Engine) Export(w io.Writer, records []model.DrawRecord) error {
	return export.Write(w, e.profile.ExportColumns, records)
}

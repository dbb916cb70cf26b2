package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/loader"
	"github.com/verte-zerg/drawlens/internal/model"
	"github.com/verte-zerg/drawlens/internal/pipeline"
	"github.com/verte-zerg/drawlens/internal/query"
)

const (
	master = "DrawNo,DrawDates,Nums,Line\n" +
		"7460,Fri 09-May-2025,15,2\n" +
		"7461,Sat 10-May-2025,8,3\n" +
		"7462,Mon 12-May-2025,21,3\n" +
		"7463,Tue 13-May-2025,33,\n" +
		"7464,Wed 14-May-2025,2,9\n" +
		"7465,Thu 15-May-2025,8,3\n" +
		"7466,Fri 16-May-2025,36,4\n" +
		"7467,Fri 16-May-2025,8,3\n" +
		"7468,Sat 17-May-2025,12,1\n"
	holidays = "Holiday,Date,Number,Counter\n" +
		"Arrival Day,10-May-2025,8,5\n" +
		"Arrival Day,30-May-2024,11,2\n"
	dow = "Day,No,Played\nFri,8,40\nFri,36,22\nSat,12,19\n"
)

func playWhe(t *testing.T) game.Profile {
	t.Helper()
	p, err := game.Default().Lookup("playwhe")
	require.NoError(t, err)
	return p
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(playWhe(t), loader.Bundle{
		Master:   flatfile.Parse(master),
		Holidays: flatfile.Parse(holidays),
		DOW:      flatfile.Parse(dow),
	})
}

func drawNumbers(records []model.DrawRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.DrawNumber)
	}
	return out
}

func TestSearchWeekdayPagesNewestFirst(t *testing.T) {
	e := newEngine(t)
	res, err := e.Search(query.Criteria{Selector: query.ByWeekday, Value: "Fri"},
		pipeline.Options{SortBy: pipeline.SortByDate, Desc: true, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Result.TotalCount)
	assert.Equal(t, 3, res.Page.TotalCount)
	assert.Equal(t, 2, res.Page.TotalPages)
	assert.Equal(t, []int{7466, 7467}, drawNumbers(res.Page.Records))
}

func TestSearchHolidayByDate(t *testing.T) {
	e := newEngine(t)
	res, err := e.Search(query.Criteria{Selector: query.ByHoliday, Value: "arrival day"},
		pipeline.Options{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{7461}, drawNumbers(res.Page.Records))
	assert.Equal(t, []string{"Arrival Day"}, e.HolidayLabels())

	res, err = e.Search(query.Criteria{Selector: query.ByHoliday, Value: "Independence Day"},
		pipeline.Options{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Result.TotalCount)
	assert.Empty(t, res.Page.Records)
}

func TestSearchRangeAndLine(t *testing.T) {
	e := newEngine(t)
	line := 3
	res, err := e.Search(query.Criteria{Selector: query.ByDrawDate, Value: "2025-05-16"},
		pipeline.Options{Months: 1, Line: &line, Page: 1, PageSize: 10,
			Now: time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Result.TotalCount)
	assert.Equal(t, []int{7467}, drawNumbers(res.Page.Records))
}

func TestSearchInvalidCriteria(t *testing.T) {
	e := newEngine(t)
	_, err := e.Search(query.Criteria{Selector: query.ByDrawNumber}, pipeline.Options{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, model.ErrInvalidCriteria)
	_, err = e.Search(query.Criteria{Selector: query.ByDrawNumber, Value: "7467"}, pipeline.Options{Page: 0, PageSize: 10})
	assert.ErrorIs(t, err, model.ErrInvalidCriteria)
}

func TestTopNumbers(t *testing.T) {
	e := newEngine(t)
	top, err := e.TopNumbers(query.ByWeekday, "friday", 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "08", top[0].Key)
	assert.Equal(t, 40, top[0].Count)

	top, err = e.TopNumbers(query.ByHoliday, "Arrival Day", 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, model.FrequencyEntry{Key: "08", Count: 5, Percentage: 71.43}, top[0])

	top, err = e.TopNumbers(query.ByDayOfMonth, "16", 0)
	require.NoError(t, err)
	assert.Empty(t, top)

	_, err = e.TopNumbers(query.ByDrawNumber, "7467", 0)
	assert.ErrorIs(t, err, model.ErrInvalidCriteria)
	_, err = e.TopNumbers(query.ByWeekday, "", 0)
	assert.ErrorIs(t, err, model.ErrInvalidCriteria)
}

func TestReportOverQueryResult(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(query.Criteria{Selector: query.ByWeekday, Value: "Fri"})
	require.NoError(t, err)
	r := e.Report(res.Records, 10)
	require.Len(t, r.Lines, 9)
	sum := 0
	for _, b := range r.Lines {
		sum += b.Count
	}
	assert.Equal(t, res.TotalCount, sum)
	assert.Equal(t, []int{1, 2, 3, 4, 9}, e.Lines())
}

func TestExportMatchesProfileColumns(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(query.Criteria{Selector: query.ByDrawNumber, Value: "7467"})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, e.Export(&buf, res.Records))
	assert.Equal(t, "DrawNo,DrawDates,Number,Line\n7467,Fri 16-May-2025,08,3", buf.String())
}

func TestLoadFailureYieldsEmptyEngine(t *testing.T) {
	e, err := Load(context.Background(), loader.DirLoader{Dir: t.TempDir()}, playWhe(t))
	require.ErrorIs(t, err, model.ErrLoadFailure)
	require.NotNil(t, e)
	assert.Equal(t, 0, e.Dataset().Len())

	res, err := e.Query(query.Criteria{Selector: query.ByWeekday, Value: "Fri"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalCount)
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pwmaster.csv"), []byte(master), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pwholidays.csv"), []byte(holidays), 0o644))

	e, err := Load(context.Background(), loader.DirLoader{Dir: dir}, playWhe(t))
	require.NoError(t, err)
	assert.Equal(t, 9, e.Dataset().Len())
	assert.Empty(t, e.Pairs())
	assert.Empty(t, e.Weekly())
	assert.Contains(t, e.Tables().Missing, "pwnctrdow")
}

func TestAllPagesEveryRecord(t *testing.T) {
	e := newEngine(t)
	res, err := e.All(pipeline.Options{SortBy: pipeline.SortByNumber, Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 9, res.Page.TotalCount)
	assert.Equal(t, 3, res.Page.TotalPages)
	// 02, 08 (three times, source order) ...
	assert.Equal(t, []int{7464, 7461, 7465}, drawNumbers(res.Page.Records))
}

func TestAllReturnsFreshSlice(t *testing.T) {
	e := newEngine(t)
	res, err := e.All(pipeline.Options{Page: 1, PageSize: 10})
	require.NoError(t, err)
	res.Result.Records[0] = model.DrawRecord{DrawNumber: -1}
	assert.Equal(t, 7460, e.Dataset().Records[0].DrawNumber)
}

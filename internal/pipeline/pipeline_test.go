package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/model"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func line(n int) *int { return &n }

func fixture() []model.DrawRecord {
	return []model.DrawRecord{
		{DrawNumber: 1, CalendarDate: day(2025, time.January, 10), Numbers: []string{"20"}, Line: line(3)},
		{DrawNumber: 2, CalendarDate: day(2025, time.April, 2), Numbers: []string{"05"}, Line: line(1)},
		{DrawNumber: 3, Numbers: []string{"11"}, Line: line(3)},
		{DrawNumber: 4, CalendarDate: day(2025, time.April, 2), Numbers: []string{"05"}, Line: line(2)},
		{DrawNumber: 5, CalendarDate: day(2024, time.June, 30), Numbers: []string{"36"}},
		{DrawNumber: 6, CalendarDate: day(2025, time.May, 1), Numbers: []string{"05"}, Line: line(3)},
		{DrawNumber: 7, CalendarDate: day(2025, time.March, 1), Numbers: nil},
	}
}

func ids(records []model.DrawRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.DrawNumber)
	}
	return out
}

var now = time.Date(2025, time.May, 16, 15, 30, 0, 0, time.UTC)

func TestRangeFilterDropsUndatedRecords(t *testing.T) {
	page, err := Apply(fixture(), Options{Months: 3, Page: 1, PageSize: 50, Now: now})
	require.NoError(t, err)
	// cutoff 2025-02-16
	assert.Equal(t, []int{7, 2, 4, 6}, ids(page.Records))
	assert.Equal(t, 4, page.TotalCount)

	page, err = Apply(fixture(), Options{Months: 0, Page: 1, PageSize: 50, Now: now})
	require.NoError(t, err)
	assert.Equal(t, 7, page.TotalCount)
}

func TestRangeCutoffIsInclusive(t *testing.T) {
	records := []model.DrawRecord{
		{DrawNumber: 1, CalendarDate: day(2025, time.April, 16)},
		{DrawNumber: 2, CalendarDate: day(2025, time.April, 15)},
	}
	out := FilterRange(records, 1, now)
	assert.Equal(t, []int{1}, ids(out))
}

func TestCutoffClampsToMonthEnd(t *testing.T) {
	endOfMarch := time.Date(2025, time.March, 31, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, *day(2025, time.February, 28), Cutoff(endOfMarch, 1))
	assert.Equal(t, *day(2024, time.December, 31), Cutoff(endOfMarch, 3))
	assert.Equal(t, *day(2024, time.September, 30), Cutoff(endOfMarch, 6))
	assert.Equal(t, *day(2023, time.February, 28), Cutoff(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), 12))

	records := []model.DrawRecord{
		{DrawNumber: 1, CalendarDate: day(2025, time.March, 1)},
		{DrawNumber: 2, CalendarDate: day(2025, time.February, 27)},
	}
	assert.Equal(t, []int{1}, ids(FilterRange(records, 1, endOfMarch)))
}

func TestSortByDateIsStable(t *testing.T) {
	sorted := Process(fixture(), Options{SortBy: SortByDate})
	// undated record 3 sorts as epoch zero; 2 and 4 share a date
	assert.Equal(t, []int{3, 5, 1, 7, 2, 4, 6}, ids(sorted))

	sorted = Process(fixture(), Options{SortBy: SortByDate, Desc: true})
	assert.Equal(t, []int{6, 2, 4, 7, 1, 5, 3}, ids(sorted))
}

func TestSortByNumber(t *testing.T) {
	sorted := Process(fixture(), Options{SortBy: SortByNumber})
	assert.Equal(t, []int{7, 2, 4, 6, 3, 1, 5}, ids(sorted))

	sorted = Process(fixture(), Options{SortBy: SortByNumber, NumberSort: game.SortDrawNumber, Desc: true})
	assert.Equal(t, []int{7, 6, 5, 4, 3, 2, 1}, ids(sorted))
}

func TestLineFilterRunsAfterRange(t *testing.T) {
	page, err := Apply(fixture(), Options{Months: 12, Line: line(3), Page: 1, PageSize: 10, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 6}, ids(page.Records))
}

func TestPagesConcatenateToFullSequence(t *testing.T) {
	full := Process(fixture(), Options{SortBy: SortByDate, Desc: true})
	for size := 1; size <= 8; size++ {
		var joined []model.DrawRecord
		first, err := Apply(fixture(), Options{SortBy: SortByDate, Desc: true, Page: 1, PageSize: size})
		require.NoError(t, err)
		for p := 1; p <= first.TotalPages; p++ {
			page, err := Apply(fixture(), Options{SortBy: SortByDate, Desc: true, Page: p, PageSize: size})
			require.NoError(t, err)
			assert.Equal(t, len(full), page.TotalCount)
			joined = append(joined, page.Records...)
		}
		assert.Equal(t, ids(full), ids(joined), "page size %d", size)
	}
}

func TestPageBeyondEndIsEmpty(t *testing.T) {
	page, err := Apply(fixture(), Options{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Equal(t, 7, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := fixture()
	_, err := Apply(in, Options{SortBy: SortByNumber, Desc: true, Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, ids(in))
}

func TestInvalidOptions(t *testing.T) {
	for _, opts := range []Options{
		{Page: 0, PageSize: 10},
		{Page: 1, PageSize: 0},
		{Page: 1, PageSize: 10, Months: 2},
		{Page: 1, PageSize: 10, SortBy: "colour"},
	} {
		_, err := Apply(fixture(), opts)
		assert.ErrorIs(t, err, model.ErrInvalidCriteria)
	}
}

func TestParseHelpers(t *testing.T) {
	m, err := ParseRange("6m")
	require.NoError(t, err)
	assert.Equal(t, 6, m)
	m, err = ParseRange("ALL")
	require.NoError(t, err)
	assert.Equal(t, 0, m)
	_, err = ParseRange("2")
	assert.ErrorIs(t, err, model.ErrInvalidCriteria)

	k, err := ParseSortKey("Number")
	require.NoError(t, err)
	assert.Equal(t, SortByNumber, k)
	_, err = ParseSortKey("weight")
	assert.Error(t, err)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, []int{3}, Slice([]int{1, 2, 3}, 2, 2))
}

func TestSliceHugePageOrSize(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Empty(t, Slice(items, math.MaxInt/2+2, 2))
	assert.Empty(t, Slice(items, math.MaxInt, math.MaxInt))
	assert.Equal(t, items, Slice(items, 1, math.MaxInt))
	assert.Empty(t, Slice([]int{}, 1, 10))

	page, err := Apply(fixture(), Options{Page: math.MaxInt, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Equal(t, 7, page.TotalCount)
}

package holiday

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/drawlens/internal/dataset"
	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
)

func profile(t *testing.T, id string) game.Profile {
	t.Helper()
	p, err := game.Default().Lookup(id)
	require.NoError(t, err)
	return p
}

const master = "DrawNo,DrawDates,Nums,Line\n" +
	"100,Mon 25-Dec-2023,05,1\n" +
	"101,Tue 26-Dec-2023,17,2\n" +
	"102,Wed 25-Dec-2024,30,4\n" +
	"103,Thu 26-Dec-2024,12,2\n"

func TestBuildByDate(t *testing.T) {
	p := profile(t, "playwhe")
	ds := dataset.Build(flatfile.Parse(master), p)
	tbl := flatfile.Parse("Holiday,Date\nChristmas,25-Dec-2023\nChristmas,25-Dec-2024\nBoxing Day,26-Dec-2023\n")

	idx := Build(tbl, p.Holiday, p.HolidayJoin)
	require.Equal(t, StrategyDate, idx.Strategy())
	assert.Equal(t, []string{"Boxing Day", "Christmas"}, idx.Labels())
	assert.Len(t, idx.Entries(), 3)

	var matched []int
	for _, r := range ds.Records {
		if idx.Matches("christmas", r) {
			matched = append(matched, r.DrawNumber)
		}
	}
	assert.Equal(t, []int{100, 102}, matched)
	assert.True(t, idx.Matches("BOXING  day", ds.Records[1]))
	assert.False(t, idx.Matches("Boxing Day", ds.Records[3]))
	assert.False(t, idx.Matches("Easter", ds.Records[0]))
}

func TestBuildByNumberWinsInAutoMode(t *testing.T) {
	p := profile(t, "pick4")
	require.Equal(t, game.JoinAuto, p.HolidayJoin)
	tbl := flatfile.Parse("Holiday,Date,No\nChristmas,01-Jan-1999,101\n")

	idx := Build(tbl, p.Holiday, p.HolidayJoin)
	require.Equal(t, StrategyNumber, idx.Strategy())

	ds := dataset.Build(flatfile.Parse(master), profile(t, "playwhe"))
	assert.False(t, idx.Matches("Christmas", ds.Records[0]))
	assert.True(t, idx.Matches("Christmas", ds.Records[1]))
}

func TestBuildWithoutJoinColumns(t *testing.T) {
	p := profile(t, "playwhe")
	idx := Build(flatfile.Parse("Holiday\nChristmas\n"), p.Holiday, p.HolidayJoin)
	assert.Equal(t, StrategyNone, idx.Strategy())
	assert.Equal(t, []string{"Christmas"}, idx.Labels())

	ds := dataset.Build(flatfile.Parse(master), p)
	assert.False(t, idx.Matches("Christmas", ds.Records[0]))

	idx = Build(flatfile.Parse("Date\n25-Dec-2023\n"), p.Holiday, p.HolidayJoin)
	assert.Equal(t, StrategyNone, idx.Strategy())
	assert.Empty(t, idx.Labels())
}

func TestUnparseableDatesJoinOnRawText(t *testing.T) {
	p := profile(t, "playwhe")
	ds := dataset.Build(flatfile.Parse("DrawNo,DrawDates,Nums\n1,Fri 31-Feb-2025,04\n"), p)
	idx := Build(flatfile.Parse("Holiday,Date\nOdd Day,31-feb-2025\n"), p.Holiday, p.HolidayJoin)
	assert.True(t, idx.Matches("odd day", ds.Records[0]))
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "fete de la musique", NormalizeLabel("  Fête de  la Musique "))
	assert.Equal(t, "", NormalizeLabel("   "))
}

func TestNilIndex(t *testing.T) {
	var idx *Index
	assert.Equal(t, StrategyNone, idx.Strategy())
	assert.Nil(t, idx.Labels())
	assert.Nil(t, idx.Keys("x"))
}

package export

import (
	"bytes"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/drawlens/internal/dataset"
	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/holiday"
	"github.com/verte-zerg/drawlens/internal/model"
	"github.com/verte-zerg/drawlens/internal/query"
)

func load(t *testing.T, id, text string) (game.Profile, dataset.Dataset) {
	t.Helper()
	p, err := game.Default().Lookup(id)
	require.NoError(t, err)
	return p, dataset.Build(flatfile.Parse(text), p)
}

const playWhe = "DrawNo,DrawDates,Nums,Line\n" +
	"7466,Thu 15-May-2025,36,4\n" +
	"7467,Fri 16-May-2025,8,3\n" +
	"7467,Fri 16-May-2025,8,3\n" +
	"7468,Sat 17-May-2025,12,\n"

func TestWritePlayWheColumns(t *testing.T) {
	p, ds := load(t, "playwhe", playWhe)
	out := String(p.ExportColumns, ds.Records[:2])
	assert.Equal(t, "DrawNo,DrawDates,Number,Line\n7466,Thu 15-May-2025,36,4\n7467,Fri 16-May-2025,08,3", out)

	assert.Equal(t, "DrawNo,DrawDates,Number,Line", String(p.ExportColumns, nil))
}

func TestWriteQuotesValuesWithCommas(t *testing.T) {
	p, ds := load(t, "winforlife", "DrawNos,DrawDates,AllNos,CBall,Wins,Draws,Nfpd\n"+
		"501,Thu 15-May-2025,\"1,4,9,12\",7,2,\"480,490\",11\n")
	out := String(p.ExportColumns, ds.Records)
	assert.Equal(t, "DrawNos,DrawDates,AllNos,CBall,Wins,Draws,Nfpd\n501,Thu 15-May-2025,\"1,4,9,12\",7,2,\"480,490\",11", out)

	back := flatfile.Parse(out)
	require.Equal(t, 1, back.Len())
	assert.Equal(t, "480,490", back.Rows[0]["Draws"].Text)
}

func TestExportRoundTripsDrawNumbers(t *testing.T) {
	p, ds := load(t, "playwhe", playWhe)
	for _, n := range []string{"7466", "7467", "7468", "9999"} {
		res, err := query.Run(ds.Records, query.Criteria{Selector: query.ByDrawNumber, Value: n}, nil)
		require.NoError(t, err)

		back := flatfile.Parse(String(p.ExportColumns, res.Records))
		var got []int
		for _, row := range back.Rows {
			v, ok := row["DrawNo"].Int()
			require.True(t, ok)
			got = append(got, v)
		}
		var want []int
		for _, r := range ds.Records {
			if Resolve(r, FieldDrawNumber) == n {
				want = append(want, r.DrawNumber)
			}
		}
		sort.Ints(got)
		sort.Ints(want)
		assert.Equal(t, want, got, n)
	}
}

func TestExportIsIdempotent(t *testing.T) {
	p, ds := load(t, "playwhe", playWhe)
	idx := holiday.Build(flatfile.Table{}, p.Holiday, p.HolidayJoin)
	res, err := query.Run(ds.Records, query.Criteria{Selector: query.ByWeekday, Value: "Fri"}, idx)
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, Write(&a, p.ExportColumns, res.Records))
	require.NoError(t, Write(&b, p.ExportColumns, res.Records))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestResolveDerivedFields(t *testing.T) {
	_, ds := load(t, "playwhe", playWhe)
	r := ds.Records[0]
	assert.Equal(t, "Thu", Resolve(r, FieldWeekday))
	assert.Equal(t, "15-May-2025", Resolve(r, FieldDate))
	assert.Equal(t, "36", Resolve(r, "Nums"))
	assert.Equal(t, "", Resolve(ds.Records[3], FieldLine))
	assert.Equal(t, "", Resolve(r, "Missing"))
	assert.Equal(t, "", Resolve(model.DrawRecord{}, FieldDate))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritePropagatesErrors(t *testing.T) {
	err := Write(failingWriter{}, []game.ExportColumn{{Header: "DrawNo", Field: FieldDrawNumber}}, nil)
	assert.ErrorContains(t, err, "disk full")
}

func TestOutputPath(t *testing.T) {
	day := time.Date(2025, time.May, 16, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "playwhe-search-2025-05-16.csv", FileName("playwhe", day))
	assert.Equal(t, filepath.Join("out", "pick2-search-2025-05-16.csv"), OutputPath("out", true, "pick2", day))
	assert.Equal(t, "x.csv", OutputPath("x.csv", false, "pick2", day))
}

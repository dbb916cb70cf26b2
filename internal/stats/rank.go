package stats

import (
	"sort"

	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/model"
)

// WeeklyRows is the number of trailing rows shown from a weekly table.
const WeeklyRows = 12

// RankTable orders the rows of a pre-aggregated table by their count column,
// descending and stable. Rows without a numeric count rank as zero.
func RankTable(tbl flatfile.Table, cols game.RankColumns) []model.RankedRow {
	keyCol, _ := tbl.Resolve(cols.Key)
	countCol, _ := tbl.Resolve(cols.Count)
	out := make([]model.RankedRow, 0, tbl.Len())
	for _, row := range tbl.Rows {
		rr := model.RankedRow{Fields: row.Text()}
		if v, ok := row[keyCol]; ok && keyCol != "" {
			rr.Key = v.Text
		}
		if v, ok := row[countCol]; ok && countCol != "" {
			if n, ok := v.Int(); ok {
				rr.Count = n
			}
		}
		out = append(out, rr)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Tail returns the last n rows of a table in source order.
func Tail(tbl flatfile.Table, n int) []flatfile.Row {
	if n <= 0 || n >= tbl.Len() {
		return tbl.Rows
	}
	return tbl.Rows[tbl.Len()-n:]
}

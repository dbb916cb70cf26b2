package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/model"
)

const barWidth = 30

// Report contains precomputed distribution data for a result set.
type Report struct {
	Game      string
	Total     int
	Lines     []model.LineBucket
	Parity    *model.ParityCounts
	Frequency []model.FrequencyEntry
}

// BuildReport aggregates records for p: a line histogram for games with a
// line, a parity histogram otherwise. Frequency keeps the top entries.
func BuildReport(records []model.DrawRecord, p game.Profile, top int) Report {
	r := Report{Game: p.ID, Total: len(records)}
	if p.HasLine {
		r.Lines = LineDistribution(records, p.LineCount)
	} else {
		pc := Parity(records)
		r.Parity = &pc
	}
	r.Frequency = NumberFrequency(records)
	if top > 0 && len(r.Frequency) > top {
		r.Frequency = r.Frequency[:top]
	}
	return r
}

// RenderReport prints every section of r.
func RenderReport(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "Draws: %d\n\n", r.Total); err != nil {
		return err
	}
	if r.Lines != nil {
		if err := RenderLines(w, r.Lines); err != nil {
			return err
		}
	}
	if r.Parity != nil {
		if err := RenderParity(w, *r.Parity); err != nil {
			return err
		}
	}
	return RenderFrequency(w, "Number Frequency", r.Frequency)
}

// RenderFrequency prints ranked numbers with counts and shares.
func RenderFrequency(w io.Writer, title string, entries []model.FrequencyEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "%s: no data.\n\n", title)
		return err
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.Key,
			fmt.Sprintf("%d", e.Count),
			fmt.Sprintf("%.2f%%", e.Percentage),
		})
	}
	return writeSection(w, title, []string{"Rank", "Number", "Count", "Share"}, rows, map[int]bool{0: true, 2: true, 3: true})
}

// RenderLines prints a line histogram with bars.
func RenderLines(w io.Writer, lines []model.LineBucket) error {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			fmt.Sprintf("%d", l.Line),
			fmt.Sprintf("%d", l.Count),
			fmt.Sprintf("%d%%", l.Percentage),
			bar(l.Percentage, barWidth),
		})
	}
	return writeSection(w, "Line Distribution", []string{"Line", "Count", "Share", ""}, rows, map[int]bool{0: true, 1: true, 2: true})
}

// RenderParity prints odd/even counts by draw and by number.
func RenderParity(w io.Writer, pc model.ParityCounts) error {
	rows := [][]string{
		{"Odd", fmt.Sprintf("%d", pc.OddDraws), fmt.Sprintf("%d", pc.OddNumbers)},
		{"Even", fmt.Sprintf("%d", pc.EvenDraws), fmt.Sprintf("%d", pc.EvenNumbers)},
	}
	return writeSection(w, "Odd / Even", []string{"Parity", "Draws", "Numbers"}, rows, map[int]bool{1: true, 2: true})
}

// RenderRanked prints ranked rows of an auxiliary table using its header order.
func RenderRanked(w io.Writer, title string, header []string, rows []model.RankedRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "%s: no data.\n\n", title)
		return err
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, len(header))
		for i, h := range header {
			line[i] = r.Fields[h]
		}
		cells = append(cells, line)
	}
	return writeSection(w, title, header, cells, nil)
}

// RenderRows prints raw table rows using the header order.
func RenderRows(w io.Writer, title string, header []string, rows []flatfile.Row) error {
	ranked := make([]model.RankedRow, 0, len(rows))
	for _, r := range rows {
		ranked = append(ranked, model.RankedRow{Fields: r.Text()})
	}
	return RenderRanked(w, title, header, ranked)
}

func writeSection(w io.Writer, title string, headers []string, rows [][]string, rightAlign map[int]bool) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderTable prints free-form rows under a title.
func RenderTable(w io.Writer, title string, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "%s: no data.\n\n", title)
		return err
	}
	return writeSection(w, title, headers, rows, nil)
}

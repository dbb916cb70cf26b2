// Package stats aggregates query results and pre-aggregated count tables.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/drawlens/internal/dataset"
	"github.com/verte-zerg/drawlens/internal/drawdate"
	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/holiday"
	"github.com/verte-zerg/drawlens/internal/model"
)

// DefaultTopN is the number of entries kept by TopNumbers.
const DefaultTopN = 10

// TopNumbers re-ranks a table pre-aggregated by (bucket, number, count). Rows
// are filtered to bucket, duplicate numbers are merged, and the n largest
// counts are returned with their share of the bucket total. Counts are taken
// as-is from the table.
func TopNumbers(tbl flatfile.Table, cols game.BucketColumns, bucket string, n, width int) []model.FrequencyEntry {
	bucketCol, ok := tbl.Resolve(cols.Bucket)
	if !ok {
		return nil
	}
	numberCol, ok := tbl.Resolve(cols.Number)
	if !ok {
		return nil
	}
	countCol, ok := tbl.Resolve(cols.Count)
	if !ok {
		return nil
	}

	want := bucketKey(bucket)
	counts := map[string]int{}
	total := 0
	for _, row := range tbl.Rows {
		b, ok := row[bucketCol]
		if !ok || bucketKey(b.Text) != want {
			continue
		}
		num, ok := row[numberCol]
		if !ok || num.Text == "" {
			continue
		}
		c, ok := row[countCol]
		if !ok {
			continue
		}
		count, ok := c.Int()
		if !ok || count < 0 {
			continue
		}
		key := num.Text
		if isDigits(key) {
			key = dataset.PadNumber(key, width)
		}
		counts[key] += count
		total += count
	}
	return rank(counts, total, n)
}

// bucketKey folds a bucket value so that "5" equals "05", "monday" equals
// "Mon" and holiday labels compare case- and accent-insensitively.
func bucketKey(s string) string {
	s = strings.TrimSpace(s)
	if isDigits(s) {
		n, err := strconv.Atoi(s)
		if err == nil {
			return "#" + strconv.Itoa(n)
		}
	}
	if w, ok := drawdate.CanonicalWeekday(s); ok {
		return "@" + w
	}
	return holiday.NormalizeLabel(s)
}

// NumberFrequency counts every number token of records and ranks them by
// count, ties broken by key. Percentages are shares of all tokens.
func NumberFrequency(records []model.DrawRecord) []model.FrequencyEntry {
	counts := map[string]int{}
	total := 0
	for _, r := range records {
		for _, num := range r.Numbers {
			counts[num]++
			total++
		}
	}
	return rank(counts, total, 0)
}

func rank(counts map[string]int, total, n int) []model.FrequencyEntry {
	out := make([]model.FrequencyEntry, 0, len(counts))
	for key, count := range counts {
		out = append(out, model.FrequencyEntry{Key: key, Count: count, Percentage: percent(count, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Key < out[j].Key
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// percent returns part/total as a percentage rounded to two decimals.
func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package stats

import (
	"math"
	"strconv"

	"github.com/verte-zerg/drawlens/internal/model"
)

// LineDistribution counts records per line in [1..lineCount]. Percentages
// are whole-number shares of len(records), zero when records is empty.
func LineDistribution(records []model.DrawRecord, lineCount int) []model.LineBucket {
	if lineCount <= 0 {
		return nil
	}
	counts := make([]int, lineCount+1)
	for _, r := range records {
		if r.Line != nil && *r.Line >= 1 && *r.Line <= lineCount {
			counts[*r.Line]++
		}
	}
	out := make([]model.LineBucket, 0, lineCount)
	for line := 1; line <= lineCount; line++ {
		pct := 0
		if len(records) > 0 {
			pct = int(math.Round(float64(counts[line]) * 100 / float64(len(records))))
		}
		out = append(out, model.LineBucket{Line: line, Count: counts[line], Percentage: pct})
	}
	return out
}

// Parity counts odd and even number tokens, and the draws holding at least
// one odd or one even token. Non-numeric tokens are ignored.
func Parity(records []model.DrawRecord) model.ParityCounts {
	var pc model.ParityCounts
	for _, r := range records {
		var odd, even bool
		for _, tok := range r.Numbers {
			n, err := strconv.Atoi(tok)
			if err != nil {
				continue
			}
			if n%2 == 0 {
				pc.EvenNumbers++
				even = true
			} else {
				pc.OddNumbers++
				odd = true
			}
		}
		if odd {
			pc.OddDraws++
		}
		if even {
			pc.EvenDraws++
		}
	}
	return pc
}

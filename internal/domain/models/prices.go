package models

import (
	"math"
	"sort"
	"time"
)

// AlignPrices inner-joins per-ticker price maps into a Series. A date is kept
// only when every ticker has a finite positive price on it; closes[i] belongs
// to tickers[i].
func AlignPrices(tickers []string, closes []map[time.Time]float64) Series {
	out := NewSeries(tickers)
	if len(tickers) == 0 || len(closes) != len(tickers) {
		return out
	}

	dates := make([]time.Time, 0, len(closes[0]))
	for d := range closes[0] {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, d := range dates {
		row := make([]float64, len(tickers))
		complete := true
		for j, m := range closes {
			v, ok := m[d]
			if !ok || !validPrice(v) {
				complete = false
				break
			}
			row[j] = v
		}
		if complete {
			out.Append(d, row)
		}
	}
	return out
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

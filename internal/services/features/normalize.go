package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"SectorVol/internal/domain/models"
)

// Normalize rescales every column so its first value is 100.
func Normalize(prices models.Series) models.Series {
	out := models.NewSeries(prices.Tickers)
	if prices.Empty() {
		return out
	}
	base := prices.Rows[0]
	for i, row := range prices.Rows {
		norm := make([]float64, len(row))
		for j, v := range row {
			norm[j] = v / base[j] * 100
		}
		out.Append(prices.Dates[i], norm)
	}
	return out
}

// Correlation computes the Pearson correlation matrix between columns.
// Coefficients involving a constant column, or computed over fewer than two
// rows, are NaN.
func Correlation(s models.Series) models.CorrelationMatrix {
	n := s.Width()
	cols := make([][]float64, n)
	for j, t := range s.Tickers {
		cols[j] = s.Column(t)
	}
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := pearson(cols[i], cols[j])
			vals[i][j] = c
			vals[j][i] = c
		}
	}
	return models.CorrelationMatrix{
		Tickers: append([]string(nil), s.Tickers...),
		Values:  vals,
	}
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

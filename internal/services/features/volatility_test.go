package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SectorVol/internal/domain/models"
)

func prices(n int, tickers ...string) models.Series {
	s := models.NewSeries(tickers)
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		row := make([]float64, len(tickers))
		for j := range row {
			// alternating moves keep returns non-constant
			row[j] = 100 + float64(j) + float64(i%3) + 0.5*float64(i)
		}
		s.Append(start.AddDate(0, 0, i), row)
	}
	return s
}

func TestReturnsDropsFirstRow(t *testing.T) {
	p := models.NewSeries([]string{"A"})
	p.Append(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), []float64{100})
	p.Append(time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), []float64{110})
	p.Append(time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC), []float64{99})

	r := Returns(p)
	require.Equal(t, 2, r.Len())
	assert.Equal(t, p.Dates[1], r.Dates[0])
	assert.InDelta(t, 0.10, r.Rows[0][0], 1e-12)
	assert.InDelta(t, -0.10, r.Rows[1][0], 1e-12)
}

func TestVolatilitySeriesWindowing(t *testing.T) {
	cfg := DefaultVolatilityConfig()

	vol := VolatilitySeries(prices(26, "A", "B"), cfg)
	require.Equal(t, 1, vol.Len())
	assert.Equal(t, []string{"A", "B"}, vol.Tickers)

	p26 := prices(26, "A", "B")
	assert.Equal(t, p26.Dates[25], vol.Dates[0])

	assert.True(t, VolatilitySeries(prices(25, "A", "B"), cfg).Empty())
	assert.Equal(t, 10, VolatilitySeries(prices(35, "A"), cfg).Len())
}

func TestRollingVolatilityMatchesSampleStdDev(t *testing.T) {
	r := models.NewSeries([]string{"A"})
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	vals := []float64{0.01, -0.02, 0.03, 0.0}
	for i, v := range vals {
		r.Append(start.AddDate(0, 0, i), []float64{v})
	}

	vol := RollingVolatility(r, 3, 252)
	require.Equal(t, 2, vol.Len())

	// sample std of {0.01,-0.02,0.03}: mean 0.00667, ss = 0.0012667, var = 0.00063333
	want := math.Sqrt(0.0012666666666666666/2) * math.Sqrt(252)
	assert.InDelta(t, want, vol.Rows[0][0], 1e-12)
	assert.Equal(t, r.Dates[2], vol.Dates[0])
}

func TestVolatilitySeriesEmptyInput(t *testing.T) {
	vol := VolatilitySeries(models.NewSeries(nil), DefaultVolatilityConfig())
	assert.True(t, vol.Empty())
	assert.NotNil(t, vol.Rows)
}

func TestNormalizeAnchorsAtHundred(t *testing.T) {
	p := prices(10, "A", "B", "C")
	n := Normalize(p)
	require.Equal(t, p.Len(), n.Len())
	for _, v := range n.Rows[0] {
		assert.Equal(t, 100.0, v)
	}
	assert.InDelta(t, p.Rows[5][1]/p.Rows[0][1]*100, n.Rows[5][1], 1e-12)
	assert.True(t, Normalize(models.NewSeries([]string{"A"})).Empty())
}

func TestCorrelation(t *testing.T) {
	s := models.NewSeries([]string{"A", "B", "C"})
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		x := float64(i)
		s.Append(start.AddDate(0, 0, i), []float64{x, -2 * x, 7})
	}

	m := Correlation(s)
	require.Len(t, m.Values, 3)
	assert.InDelta(t, 1, m.Values[0][0], 1e-12)
	assert.InDelta(t, -1, m.Values[0][1], 1e-12)
	assert.Equal(t, m.Values[0][1], m.Values[1][0])
	assert.True(t, math.IsNaN(m.Values[0][2]))
}

package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSectorIgnoresCase(t *testing.T) {
	s, ok := LookupSector("  tech ")
	require.True(t, ok)
	assert.Equal(t, "Tech", s.Name)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL", "NVDA", "META"}, s.Tickers)

	_, ok = LookupSector("Crypto")
	assert.False(t, ok)
}

func TestSectorsReturnsCopy(t *testing.T) {
	all := Sectors()
	require.Len(t, all, 5)
	all[0].Tickers[0] = "XXX"

	again, _ := LookupSector(all[0].Name)
	assert.Equal(t, "LMT", again.Tickers[0])
}

func TestSeriesColumn(t *testing.T) {
	s := NewSeries([]string{"A", "B"})
	s.Append(day(1), []float64{1, 10})
	s.Append(day(2), []float64{2, 20})

	assert.Equal(t, []float64{10, 20}, s.Column("B"))
	assert.Nil(t, s.Column("C"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.Width())
}

func TestAlignPricesInnerJoins(t *testing.T) {
	a := map[time.Time]float64{day(3): 12, day(1): 10, day(2): 11, day(4): 13}
	b := map[time.Time]float64{day(1): 20, day(2): math.NaN(), day(3): 22, day(5): 25}

	s := AlignPrices([]string{"A", "B"}, []map[time.Time]float64{a, b})

	assert.Equal(t, []time.Time{day(1), day(3)}, s.Dates)
	assert.Equal(t, [][]float64{{10, 20}, {12, 22}}, s.Rows)
}

func TestAlignPricesDropsNonPositiveAndHandlesEmpty(t *testing.T) {
	a := map[time.Time]float64{day(1): 0, day(2): 5}
	s := AlignPrices([]string{"A"}, []map[time.Time]float64{a})
	assert.Equal(t, []time.Time{day(2)}, s.Dates)

	empty := AlignPrices([]string{"A", "B"}, []map[time.Time]float64{a, {}})
	assert.True(t, empty.Empty())
	assert.Equal(t, []string{"A", "B"}, empty.Tickers)

	assert.True(t, AlignPrices(nil, nil).Empty())
}

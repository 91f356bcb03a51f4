package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"SectorVol/internal/domain/models"
)

const (
	// DefaultWindow is the number of trailing returns in one volatility window.
	DefaultWindow = 25
	// TradingDaysPerYear annualizes daily statistics via its square root.
	TradingDaysPerYear = 252
)

// VolatilityConfig fixes the window length and annualization basis.
type VolatilityConfig struct {
	Window         int
	PeriodsPerYear float64
}

// DefaultVolatilityConfig returns the 25-day window annualized over 252 days.
func DefaultVolatilityConfig() VolatilityConfig {
	return VolatilityConfig{Window: DefaultWindow, PeriodsPerYear: TradingDaysPerYear}
}

// Returns computes simple returns p[t]/p[t-1] - 1 per ticker. The first
// date has no return and is dropped, so the result has one row fewer.
func Returns(prices models.Series) models.Series {
	out := models.NewSeries(prices.Tickers)
	for i := 1; i < prices.Len(); i++ {
		prev, cur := prices.Rows[i-1], prices.Rows[i]
		row := make([]float64, len(cur))
		for j := range cur {
			row[j] = cur[j]/prev[j] - 1
		}
		out.Append(prices.Dates[i], row)
	}
	return out
}

// RollingVolatility computes the sample standard deviation of each ticker's
// trailing window of returns, scaled by sqrt(periodsPerYear). A row exists
// only once a full window of consecutive returns is available; it is dated
// by the last return in the window.
func RollingVolatility(returns models.Series, window int, periodsPerYear float64) models.Series {
	out := models.NewSeries(returns.Tickers)
	if window < 2 || returns.Len() < window {
		return out
	}
	scale := math.Sqrt(periodsPerYear)
	buf := make([]float64, window)
	for end := window - 1; end < returns.Len(); end++ {
		row := make([]float64, returns.Width())
		for j := range row {
			for k := 0; k < window; k++ {
				buf[k] = returns.Rows[end-window+1+k][j]
			}
			row[j] = stat.StdDev(buf, nil) * scale
		}
		out.Append(returns.Dates[end], row)
	}
	return out
}

// VolatilitySeries derives the annualized rolling volatility table from prices.
// Fewer than Window+1 prices yields an empty table.
func VolatilitySeries(prices models.Series, cfg VolatilityConfig) models.Series {
	return RollingVolatility(Returns(prices), cfg.Window, cfg.PeriodsPerYear)
}

package analytics

import (
	"SectorVol/internal/domain/models"
)

// DefaultVolatilityThreshold is the annualized volatility a ticker must exceed
// for an outlier date to be reported.
const DefaultVolatilityThreshold = 0.35

// FilterHighVolatility keeps the rows labelled outlier on which at least one
// ticker's volatility is strictly above threshold. Each kept row carries every
// ticker's value for that date, not only the ones above the bar. Rows without
// a label count as normal.
func FilterHighVolatility(vol models.Series, labels []models.Label, threshold float64) models.AnomalySet {
	set := models.AnomalySet{
		Tickers:   append([]string{}, vol.Tickers...),
		Threshold: threshold,
		Rows:      []models.AnomalyRow{},
	}

	for i, row := range vol.Rows {
		if i >= len(labels) || labels[i] != models.LabelOutlier {
			continue
		}
		var exceeding []string
		for j, v := range row {
			if v > threshold && j < len(vol.Tickers) {
				exceeding = append(exceeding, vol.Tickers[j])
			}
		}
		if len(exceeding) == 0 {
			continue
		}
		set.Rows = append(set.Rows, models.AnomalyRow{
			Date:      vol.Dates[i],
			Values:    append([]float64(nil), row...),
			Exceeding: exceeding,
		})
	}
	return set
}

package models

import "time"

// Label classifies one volatility row as a whole; it is not per ticker.
type Label string

const (
	LabelNormal  Label = "normal"
	LabelOutlier Label = "outlier"
)

// AnomalyRow is one kept date of the high-volatility anomaly set.
// Values carries every ticker's volatility that date; Exceeding lists the
// tickers whose value crossed the threshold.
type AnomalyRow struct {
	Date      time.Time `json:"date"`
	Values    []float64 `json:"values"`
	Exceeding []string  `json:"exceeding"`
}

// AnomalySet is the high-volatility anomaly set for one volatility series.
type AnomalySet struct {
	Tickers   []string     `json:"tickers"`
	Threshold float64      `json:"threshold"`
	Rows      []AnomalyRow `json:"rows"`
}

// Dates returns the kept dates in order.
func (a AnomalySet) Dates() []time.Time {
	out := make([]time.Time, 0, len(a.Rows))
	for _, r := range a.Rows {
		out = append(out, r.Date)
	}
	return out
}

// Empty reports whether no date passed the filter.
func (a AnomalySet) Empty() bool { return len(a.Rows) == 0 }

// AnomalyReport is the notification published for a computed anomaly set.
type AnomalyReport struct {
	Sector     string     `json:"sector"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Anomalies  AnomalySet `json:"anomalies"`
	ComputedAt time.Time  `json:"computed_at"`
}

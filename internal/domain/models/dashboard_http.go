package models

// Requests for dashboard HTTP endpoints. Dates are YYYY-MM-DD; the default
// range matches the dashboard's initial date pickers.

type DashboardRequest struct {
	Sector      string `query:"sector" json:"sector" validate:"required"`
	Start       string `query:"start" json:"start" default:"2019-01-01" validate:"date"`
	End         string `query:"end" json:"end" default:"2024-01-01" validate:"date"`
	Correlation bool   `query:"correlation" json:"correlation"`
	Anomalies   bool   `query:"anomalies" json:"anomalies"`
}

type SectionRequest struct {
	Sector string `query:"sector" json:"sector" validate:"required"`
	Start  string `query:"start" json:"start" default:"2019-01-01" validate:"date"`
	End    string `query:"end" json:"end" default:"2024-01-01" validate:"date"`
}

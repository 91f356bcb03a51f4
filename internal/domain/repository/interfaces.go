package repository

import (
	"context"
	"time"

	"SectorVol/internal/domain/models"
)

// PriceLoader returns adjusted close prices for tickers over [start, end).
// Dates missing a price for any ticker are dropped. No data is an empty
// series, not an error.
type PriceLoader interface {
	Load(ctx context.Context, tickers []string, start, end time.Time) (models.Series, error)
}

// AnomalyPublisher emits anomaly reports to downstream consumers.
type AnomalyPublisher interface {
	Publish(ctx context.Context, report *models.AnomalyReport) error
	Close() error
}

type Metrics interface {
	RecordFetch(source, outcome string)
	RecordCache(result string)
	RecordAnomalies(sector string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

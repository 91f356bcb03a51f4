package service

import (
	"context"

	"SectorVol/internal/domain/models"
)

// AnomalyDetector labels each row of a volatility table as normal or outlier
// from the joint vector of ticker volatilities on that date.
type AnomalyDetector interface {
	Detect(ctx context.Context, vol models.Series) []models.Label
}

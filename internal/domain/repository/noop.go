package repository

import (
	"context"

	"SectorVol/internal/domain/models"
)

// NoopPublisher drops reports. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.AnomalyReport) error { return nil }
func (NoopPublisher) Close() error { return nil }

// NoopMetrics discards measurements.
type NoopMetrics struct{}

func (NoopMetrics) RecordFetch(string, string) {}
func (NoopMetrics) RecordCache(string) {}
func (NoopMetrics) RecordAnomalies(string, int) {}
func (NoopMetrics) RecordError(string) {}
func (NoopMetrics) RecordLatency(string, float64) {}

var (
	_ AnomalyPublisher = NoopPublisher{}
	_ Metrics          = NoopMetrics{}
)

package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches   *prometheus.CounterVec
	cache     *prometheus.CounterVec
	anomalies *prometheus.CounterVec
	lastCount *prometheus.GaugeVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// New creates a recorder registered with the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered with reg.
// Collectors already present in reg are reused.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	return &Recorder{
		fetches: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorvol_price_fetches_total",
				Help: "Price loads by source and outcome",
			},
			[]string{"source", "outcome"},
		)),
		cache: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorvol_price_cache_total",
				Help: "Price cache lookups by result",
			},
			[]string{"result"},
		)),
		anomalies: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorvol_anomalies_found_total",
				Help: "High volatility anomaly dates reported per sector",
			},
			[]string{"sector"},
		)),
		lastCount: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sectorvol_anomalies_last",
				Help: "Size of the last anomaly set computed per sector",
			},
			[]string{"sector"},
		)),
		errors: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorvol_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		)),
		latency: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sectorvol_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// RecordFetch records a price load attempt.
func (r *Recorder) RecordFetch(source, outcome string) {
	r.fetches.WithLabelValues(source, outcome).Inc()
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(result string) {
	r.cache.WithLabelValues(result).Inc()
}

// RecordAnomalies records the size of a computed anomaly set.
func (r *Recorder) RecordAnomalies(sector string, n int) {
	r.anomalies.WithLabelValues(sector).Add(float64(n))
	r.lastCount.WithLabelValues(sector).Set(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}


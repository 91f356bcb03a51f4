package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordFetch("yahoo", "ok")
	r.RecordFetch("yahoo", "ok")
	r.RecordCache("hit")
	r.RecordAnomalies("Tech", 3)
	r.RecordAnomalies("Tech", 2)
	r.RecordError("provider")
	r.RecordLatency("detect", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetches.WithLabelValues("yahoo", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cache.WithLabelValues("hit")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.anomalies.WithLabelValues("Tech")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.lastCount.WithLabelValues("Tech")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("provider")))
}

func TestRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewWithRegistry(reg)
	second := NewWithRegistry(reg)

	first.RecordError("x")
	assert.Equal(t, 1.0, testutil.ToFloat64(second.errors.WithLabelValues("x")))
}

package analytics

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"time"

	"SectorVol/internal/domain/models"
	"SectorVol/internal/domain/service"
	"SectorVol/pkg/cache"
	"SectorVol/pkg/logger"
)

const (
	labelNormalByte  byte = 'n'
	labelOutlierByte byte = 'o'
)

var _ service.AnomalyDetector = (*Detector)(nil)

// Detector runs FitPredict and remembers results per input fingerprint.
// A cached answer is exactly what a refit would return.
type Detector struct {
	cfg   DetectorConfig
	store cache.Service
	ttl   time.Duration
	log   *logger.Logger
}

// NewDetector creates a detector; a nil store disables result caching.
func NewDetector(cfg DetectorConfig, store cache.Service, ttl time.Duration, log *logger.Logger) *Detector {
	if log == nil {
		log = logger.Nop()
	}
	return &Detector{cfg: cfg, store: store, ttl: ttl, log: log}
}

// Config returns the detector configuration.
func (d *Detector) Config() DetectorConfig { return d.cfg }

// Detect labels every row of vol.
func (d *Detector) Detect(ctx context.Context, vol models.Series) []models.Label {
	if vol.Empty() {
		return []models.Label{}
	}
	if d.store == nil {
		return d.fit(vol)
	}

	key := cache.GenerateKeyWithParams("detector", Fingerprint(vol.Rows, d.cfg))
	if b, err := d.store.Get(ctx, key); err == nil {
		if labels, ok := decodeLabels(b, vol.Len()); ok {
			return labels
		}
		d.log.Warn("discarding malformed detector cache entry", logger.String("key", key))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		d.log.Warn("detector cache read failed", logger.Error(err))
	}

	labels := d.fit(vol)
	if err := d.store.Set(ctx, key, encodeLabels(labels), d.ttl); err != nil {
		d.log.Warn("detector cache write failed", logger.Error(err))
	}
	return labels
}

func (d *Detector) fit(vol models.Series) []models.Label {
	if degenerate(vol.Rows) {
		d.log.Debug("volatility table cannot be partitioned, labelling all normal",
			logger.Int("rows", vol.Len()), logger.Int("tickers", vol.Width()))
	}
	return FitPredict(vol.Rows, d.cfg)
}

// Fingerprint identifies (data, cfg) by the SHA-256 of their binary encoding.
func Fingerprint(data [][]float64, cfg DetectorConfig) string {
	buf := make([]byte, 0, 40+8*len(data)*(1+widthOf(data)))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(cfg.Contamination))
	buf = binary.LittleEndian.AppendUint64(buf, cfg.Seed)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(cfg.Trees))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(cfg.MaxSamples))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(data)))
	for _, row := range data {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(row)))
		for _, v := range row {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
	}
	return cache.HashKey(buf)
}

func widthOf(data [][]float64) int {
	if len(data) == 0 {
		return 0
	}
	return len(data[0])
}

func encodeLabels(labels []models.Label) []byte {
	b := make([]byte, len(labels))
	for i, l := range labels {
		b[i] = labelNormalByte
		if l == models.LabelOutlier {
			b[i] = labelOutlierByte
		}
	}
	return b
}

func decodeLabels(b []byte, n int) ([]models.Label, bool) {
	if len(b) != n {
		return nil, false
	}
	labels := make([]models.Label, n)
	for i, c := range b {
		switch c {
		case labelNormalByte:
			labels[i] = models.LabelNormal
		case labelOutlierByte:
			labels[i] = models.LabelOutlier
		default:
			return nil, false
		}
	}
	return labels, true
}

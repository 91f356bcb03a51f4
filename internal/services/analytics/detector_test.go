package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SectorVol/internal/domain/models"
	"SectorVol/pkg/cache"
)

func volSeries(data [][]float64, tickers ...string) models.Series {
	s := models.NewSeries(tickers)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, row := range data {
		s.Append(start.AddDate(0, 0, i), row)
	}
	return s
}

func TestDetectorCacheHitMatchesRefit(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryCache()
	defer store.Close()

	cfg := DefaultDetectorConfig()
	d := NewDetector(cfg, store, time.Hour, nil)
	vol := volSeries(cluster(80, 3, 21), "A", "B", "C")

	first := d.Detect(ctx, vol)
	assert.Equal(t, 1, store.Len())
	second := d.Detect(ctx, vol)

	assert.Equal(t, FitPredict(vol.Rows, cfg), first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Len())
}

func TestDetectorIgnoresMalformedCacheEntry(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryCache()
	defer store.Close()

	cfg := DefaultDetectorConfig()
	vol := volSeries(cluster(40, 2, 2), "A", "B")
	key := cache.GenerateKeyWithParams("detector", Fingerprint(vol.Rows, cfg))
	require.NoError(t, store.Set(ctx, key, []byte("nn"), time.Hour))

	d := NewDetector(cfg, store, time.Hour, nil)
	assert.Equal(t, FitPredict(vol.Rows, cfg), d.Detect(ctx, vol))
}

func TestDetectorWithoutStore(t *testing.T) {
	cfg := DefaultDetectorConfig()
	d := NewDetector(cfg, nil, 0, nil)
	vol := volSeries(cluster(40, 2, 9), "A", "B")

	assert.Equal(t, FitPredict(vol.Rows, cfg), d.Detect(context.Background(), vol))
	assert.Empty(t, d.Detect(context.Background(), models.NewSeries([]string{"A"})))
}

func TestFingerprintDependsOnDataAndConfig(t *testing.T) {
	data := cluster(10, 2, 4)
	cfg := DefaultDetectorConfig()
	base := Fingerprint(data, cfg)

	assert.Equal(t, base, Fingerprint(cluster(10, 2, 4), cfg))

	other := cfg
	other.Seed = 43
	assert.NotEqual(t, base, Fingerprint(data, other))

	changed := cluster(10, 2, 4)
	changed[3][1] += 1e-9
	assert.NotEqual(t, base, Fingerprint(changed, cfg))
}

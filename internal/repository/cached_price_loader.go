package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"SectorVol/internal/domain/models"
	domrepo "SectorVol/internal/domain/repository"
	"SectorVol/pkg/cache"
	applogger "SectorVol/pkg/logger"
)

var _ domrepo.PriceLoader = (*CachedPriceLoader)(nil)

// CachedPriceLoader memoizes another loader by the exact (tickers, start, end)
// request. Errors are never cached.
type CachedPriceLoader struct {
	next    domrepo.PriceLoader
	store   cache.Service
	ttl     time.Duration
	l       *applogger.Logger
	metrics domrepo.Metrics
}

func NewCachedPriceLoader(next domrepo.PriceLoader, store cache.Service, ttl time.Duration, l *applogger.Logger, metrics domrepo.Metrics) *CachedPriceLoader {
	if l == nil {
		l = applogger.Nop()
	}
	if metrics == nil {
		metrics = domrepo.NoopMetrics{}
	}
	return &CachedPriceLoader{next: next, store: store, ttl: ttl, l: l, metrics: metrics}
}

func (c *CachedPriceLoader) Load(ctx context.Context, tickers []string, start, end time.Time) (models.Series, error) {
	key := priceKey(tickers, start, end)

	cached, err := cache.GetJSON[models.Series](ctx, c.store, key)
	switch {
	case err == nil:
		c.metrics.RecordCache("hit")
		return cached, nil
	case errors.Is(err, cache.ErrCacheMiss):
		c.metrics.RecordCache("miss")
	default:
		c.metrics.RecordCache("error")
		c.l.Warn("price cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	prices, err := c.next.Load(ctx, tickers, start, end)
	if err != nil {
		return models.Series{}, err
	}
	if err := cache.SetJSON(ctx, c.store, key, prices, c.ttl); err != nil {
		c.l.Warn("price cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return prices, nil
}

func priceKey(tickers []string, start, end time.Time) string {
	return cache.GenerateKeyWithParams("prices",
		strings.Join(tickers, ","),
		start.UTC().Format(time.DateOnly),
		end.UTC().Format(time.DateOnly),
	)
}

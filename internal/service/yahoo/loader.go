package yahoo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SectorVol/internal/domain/models"
	drepo "SectorVol/internal/domain/repository"
	applogger "SectorVol/pkg/logger"
)

var _ drepo.PriceLoader = (*Loader)(nil)

type barSource interface {
	DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)
}

// Loader implements PriceLoader over the chart API, one request per ticker.
type Loader struct {
	src     barSource
	metrics drepo.Metrics
	log     *applogger.Logger
	workers int
}

// NewLoader creates a loader fetching up to workers tickers at once.
func NewLoader(src *Client, metrics drepo.Metrics, log *applogger.Logger, workers int) *Loader {
	return newLoader(src, metrics, log, workers)
}

func newLoader(src barSource, metrics drepo.Metrics, log *applogger.Logger, workers int) *Loader {
	if metrics == nil {
		metrics = drepo.NoopMetrics{}
	}
	if log == nil {
		log = applogger.Nop()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Loader{src: src, metrics: metrics, log: log, workers: workers}
}

// Load returns adjusted closes for tickers on the dates all of them traded.
func (l *Loader) Load(ctx context.Context, tickers []string, start, end time.Time) (models.Series, error) {
	if len(tickers) == 0 {
		return models.NewSeries(tickers), nil
	}
	started := time.Now()

	closes := make([]map[time.Time]float64, len(tickers))
	errs := make([]error, len(tickers))
	sem := make(chan struct{}, l.workers)
	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			bars, err := l.src.DailyCloses(ctx, ticker, start, end)
			if err != nil {
				errs[i] = err
				return
			}
			m := make(map[time.Time]float64, len(bars))
			for _, b := range bars {
				m[b.Date] = b.Close
			}
			closes[i] = m
		}(i, ticker)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			l.metrics.RecordFetch("yahoo", "error")
			l.log.Error("price load failed",
				applogger.String("ticker", tickers[i]),
				applogger.Error(err),
			)
			return models.Series{}, fmt.Errorf("load %s: %w: %w", tickers[i], models.ErrProviderUnavailable, err)
		}
	}

	prices := models.AlignPrices(tickers, closes)
	outcome := "ok"
	if prices.Empty() {
		outcome = "empty"
	}
	l.metrics.RecordFetch("yahoo", outcome)
	l.metrics.RecordLatency("load_prices", time.Since(started).Seconds())
	l.log.Debug("prices loaded",
		applogger.Strings("tickers", tickers),
		applogger.Date("start", start),
		applogger.Date("end", end),
		applogger.Int("rows", prices.Len()),
	)
	return prices, nil
}

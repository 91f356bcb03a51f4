package usecase

import (
	"context"
	"fmt"
	"time"

	"SectorVol/internal/domain/models"
	domrepo "SectorVol/internal/domain/repository"
	"SectorVol/internal/domain/service"
	"SectorVol/internal/services/analytics"
	"SectorVol/internal/services/features"
	applogger "SectorVol/pkg/logger"
)

// DashboardConfig holds the analysis constants of the dashboard.
type DashboardConfig struct {
	Volatility     features.VolatilityConfig
	Threshold      float64
	Timeout        time.Duration
	PublishTimeout time.Duration
}

// DefaultDashboardConfig returns the 25-day, 252-period, 0.35 setup.
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Volatility:     features.DefaultVolatilityConfig(),
		Threshold:      analytics.DefaultVolatilityThreshold,
		Timeout:        60 * time.Second,
		PublishTimeout: 5 * time.Second,
	}
}

// Dashboard composes price loading, normalization, correlation and the
// volatility anomaly pipeline for one sector and date range.
type Dashboard struct {
	loader    domrepo.PriceLoader
	detector  service.AnomalyDetector
	publisher domrepo.AnomalyPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
	cfg       DashboardConfig
	now       func() time.Time
}

func NewDashboard(
	loader domrepo.PriceLoader,
	detector service.AnomalyDetector,
	publisher domrepo.AnomalyPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	cfg DashboardConfig,
) *Dashboard {
	if publisher == nil {
		publisher = domrepo.NoopPublisher{}
	}
	if metrics == nil {
		metrics = domrepo.NoopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return &Dashboard{
		loader:    loader,
		detector:  detector,
		publisher: publisher,
		metrics:   metrics,
		l:         l,
		cfg:       cfg,
		now:       time.Now,
	}
}

type DashboardParams struct {
	Sector      string
	Start       time.Time
	End         time.Time
	Correlation bool
	Anomalies   bool
}

// DashboardResult is everything the chart front end draws for one request.
// Optional sections are nil unless requested.
type DashboardResult struct {
	Sector      string                    `json:"sector"`
	Tickers     []string                  `json:"tickers"`
	Start       string                    `json:"start"`
	End         string                    `json:"end"`
	NoData      bool                      `json:"no_data"`
	Performance models.Series             `json:"performance"`
	Correlation *models.CorrelationMatrix `json:"correlation,omitempty"`
	Volatility  *models.Series            `json:"volatility,omitempty"`
	Anomalies   *models.AnomalySet        `json:"anomalies,omitempty"`
}

// Sectors lists the selectable sectors.
func (d *Dashboard) Sectors() []models.Sector {
	return models.Sectors()
}

// LoadPrices resolves the sector and loads its adjusted closes over [start, end).
func (d *Dashboard) LoadPrices(ctx context.Context, sector string, start, end time.Time) (models.Sector, models.Series, error) {
	sec, ok := models.LookupSector(sector)
	if !ok {
		return models.Sector{}, models.Series{}, fmt.Errorf("%w: %q", models.ErrUnknownSector, sector)
	}
	if start.After(end) {
		return models.Sector{}, models.Series{}, fmt.Errorf("%w: %s > %s", models.ErrInvalidRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	prices, err := d.loader.Load(ctx, sec.Tickers, start, end)
	if err != nil {
		d.metrics.RecordError("load_prices")
		return sec, models.Series{}, fmt.Errorf("load %s prices: %w", sec.Name, err)
	}
	return sec, prices, nil
}

// NormalizedSeries rebases every ticker to 100 on the first date.
func (d *Dashboard) NormalizedSeries(prices models.Series) models.Series {
	return features.Normalize(prices)
}

// CorrelationMatrix is the Pearson matrix of the normalized series.
func (d *Dashboard) CorrelationMatrix(normalized models.Series) models.CorrelationMatrix {
	return features.Correlation(normalized)
}

// VolatilitySeries is the annualized rolling volatility of prices.
func (d *Dashboard) VolatilitySeries(prices models.Series) models.Series {
	return features.VolatilitySeries(prices, d.cfg.Volatility)
}

// HighVolatilityAnomalies labels vol with the detector and keeps outlier
// dates where some ticker is above the threshold. A failing detector yields
// an empty set.
func (d *Dashboard) HighVolatilityAnomalies(ctx context.Context, vol models.Series) (set models.AnomalySet) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.metrics.RecordError("detector")
			d.l.Error("anomaly detector failed", applogger.Any("panic", r))
			set = analytics.FilterHighVolatility(vol, nil, d.cfg.Threshold)
		}
	}()

	labels := d.detector.Detect(ctx, vol)
	set = analytics.FilterHighVolatility(vol, labels, d.cfg.Threshold)
	d.metrics.RecordLatency("detect_anomalies", time.Since(started).Seconds())
	return set
}

// Build produces the dashboard for p. Correlation and anomaly sections are
// computed only when requested.
func (d *Dashboard) Build(ctx context.Context, p DashboardParams) (*DashboardResult, error) {
	sec, prices, err := d.LoadPrices(ctx, p.Sector, p.Start, p.End)
	if err != nil {
		return nil, err
	}

	normalized := d.NormalizedSeries(prices)
	res := &DashboardResult{
		Sector:      sec.Name,
		Tickers:     sec.Tickers,
		Start:       p.Start.Format(time.DateOnly),
		End:         p.End.Format(time.DateOnly),
		NoData:      prices.Empty(),
		Performance: normalized,
	}

	if p.Correlation {
		m := d.CorrelationMatrix(normalized)
		res.Correlation = &m
	}

	if p.Anomalies {
		vol := d.VolatilitySeries(prices)
		set := d.HighVolatilityAnomalies(ctx, vol)
		res.Volatility = &vol
		res.Anomalies = &set
		d.report(ctx, sec.Name, p, set)
	}

	d.l.Info("dashboard built",
		applogger.String("sector", sec.Name),
		applogger.Date("start", p.Start),
		applogger.Date("end", p.End),
		applogger.Int("rows", prices.Len()),
		applogger.Bool("correlation", p.Correlation),
		applogger.Bool("anomalies", p.Anomalies),
	)
	return res, nil
}

// report counts and publishes a non-empty anomaly set. Failures are logged only.
func (d *Dashboard) report(ctx context.Context, sector string, p DashboardParams, set models.AnomalySet) {
	d.metrics.RecordAnomalies(sector, len(set.Rows))
	if set.Empty() {
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.PublishTimeout)
	defer cancel()
	computedAt := d.now().UTC()
	err := d.publisher.Publish(pctx, &models.AnomalyReport{
		Sector:     sector,
		Start:      p.Start,
		End:        p.End,
		Anomalies:  set,
		ComputedAt: computedAt,
	})
	if err != nil {
		d.metrics.RecordError("publish")
		d.l.Warn("anomaly report not published",
			applogger.String("sector", sector),
			applogger.Error(err),
		)
		return
	}
	d.l.Debug("anomaly report published",
		applogger.String("sector", sector),
		applogger.Int("rows", len(set.Rows)),
		applogger.Time("computed_at", computedAt),
	)
}

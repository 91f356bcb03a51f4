package di

import (
	"context"
	"fmt"
	"time"

	"SectorVol/internal/domain/repository"
	"SectorVol/internal/domain/service"
	"SectorVol/internal/handler/api"
	internalrepo "SectorVol/internal/repository"
	"SectorVol/internal/service/yahoo"
	"SectorVol/internal/services/analytics"
	"SectorVol/internal/services/features"
	"SectorVol/internal/usecase"
	"SectorVol/pkg/cache"
	pkgch "SectorVol/pkg/clickhouse"
	"SectorVol/pkg/config"
	xhttp "SectorVol/pkg/http"
	pkgkafka "SectorVol/pkg/kafka"
	applogger "SectorVol/pkg/logger"
	"SectorVol/pkg/metrics"
	"SectorVol/pkg/server"
)

// yahooWorkers bounds concurrent per-ticker chart requests.
const yahooWorkers = 4

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvidePriceCache creates the raw price cache: in-process memory, or a
// memory L1 over redis when redis is enabled.
func ProvidePriceCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemorySize),
			cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
		), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("price cache: redis enabled", applogger.String("addr", cfg.Cache.Redis.Addr))
	return cache.NewLayeredCache(rc, cfg.Cache.MemorySize, cfg.Cache.Redis.L1TTL), nil
}

// ProvideResultCache creates the in-process detector result cache.
func ProvideResultCache(cfg *config.Config) *cache.MemoryCache {
	return cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Analytics.ResultCacheSize),
		cache.WithMemoryDefaultTTL(cfg.Analytics.ResultCacheTTL),
	)
}

// ProvideClickHouseClient creates a ClickHouse client and price table when
// the clickhouse provider is selected; otherwise it returns nil.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Market.Provider != config.ProviderClickHouse {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append([]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.SchemaStatements(priceTable(cfg))...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

func priceTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
}

// ProvidePriceLoader selects the market data provider and wraps it with the
// raw price cache.
func ProvidePriceLoader(
	cfg *config.Config,
	l *applogger.Logger,
	m repository.Metrics,
	ch *pkgch.Client,
	store cache.Service,
) repository.PriceLoader {
	var src repository.PriceLoader
	switch cfg.Market.Provider {
	case config.ProviderClickHouse:
		src = internalrepo.NewCHPriceLoader(ch, priceTable(cfg), l, m)
	default:
		hc := xhttp.NewClient(
			xhttp.WithTimeout(cfg.Market.Timeout),
			xhttp.WithUserAgent(cfg.Market.UserAgent),
		)
		client := yahoo.NewClient(hc, l,
			yahoo.WithBaseURL(cfg.Market.BaseURL),
			yahoo.WithRateLimit(cfg.Market.Rate, cfg.Market.Burst),
			yahoo.WithRetry(cfg.Market.MaxRetries, 500*time.Millisecond),
			yahoo.WithBreaker(cfg.Market.Breaker.MaxFailures, cfg.Market.Breaker.OpenTimeout),
		)
		src = yahoo.NewLoader(client, m, l, yahooWorkers)
	}
	return internalrepo.NewCachedPriceLoader(src, store, cfg.Cache.TTL, l, m)
}

// ProvideKafkaProducer creates a Kafka producer when kafka is enabled;
// otherwise it returns nil.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopic(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAnomalyPublisher publishes to kafka, or drops reports when no
// producer is configured.
func ProvideAnomalyPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AnomalyPublisher {
	if producer == nil {
		return repository.NoopPublisher{}
	}
	return internalrepo.NewKafkaAnomalyPublisher(producer, cfg.Kafka.Topic)
}

// ProvideDetector creates the cached isolation forest detector.
func ProvideDetector(cfg *config.Config, results *cache.MemoryCache, l *applogger.Logger) service.AnomalyDetector {
	dc := analytics.DetectorConfig{
		Contamination: cfg.Analytics.Contamination,
		Seed:          cfg.Analytics.Seed,
		Trees:         cfg.Analytics.Trees,
		MaxSamples:    cfg.Analytics.MaxSamples,
	}
	return analytics.NewDetector(dc, results, cfg.Analytics.ResultCacheTTL, l)
}

// ProvideDashboard creates the dashboard use case.
func ProvideDashboard(
	loader repository.PriceLoader,
	detector service.AnomalyDetector,
	publisher repository.AnomalyPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Dashboard {
	dc := usecase.DefaultDashboardConfig()
	dc.Volatility = features.VolatilityConfig{
		Window:         cfg.Analytics.Window,
		PeriodsPerYear: cfg.Analytics.PeriodsPerYear,
	}
	dc.Threshold = cfg.Analytics.Threshold
	if cfg.Server.WriteTimeout > 0 {
		dc.Timeout = cfg.Server.WriteTimeout
	}
	return usecase.NewDashboard(loader, detector, publisher, m, l, dc)
}

// ProvideDashboardHandler creates the dashboard HTTP handler.
func ProvideDashboardHandler(l *applogger.Logger, dash *usecase.Dashboard) *api.DashboardEchoHandler {
	return api.NewDashboardEchoHandler(l, dash)
}

// ProvideHTTPServer creates the Echo server with all handlers.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.DashboardEchoHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(metricsPath, cfg.Metrics.Slow),
	}
	if cfg.Server.RateLimit.Enabled {
		opts = append(opts, xhttp.WithRateLimit(cfg.Server.RateLimit.Rate, cfg.Server.RateLimit.Burst))
	}
	return xhttp.NewServer(l, []xhttp.Handler{h}, opts...)
}

// ProvideApp creates the application with every closable dependency.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	priceCache cache.Service,
	results *cache.MemoryCache,
	publisher repository.AnomalyPublisher,
	ch *pkgch.Client,
) *server.App {
	resources := []server.Resource{
		{Name: "price cache", Closer: priceCache},
		{Name: "result cache", Closer: results},
		{Name: "anomaly publisher", Closer: publisher},
	}
	if ch != nil {
		resources = append(resources, server.Resource{Name: "clickhouse", Closer: ch})
	}
	return server.New(l, srv, cfg.Server.ShutdownTimeout, resources...)
}

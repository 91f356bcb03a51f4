//go:build wireinject
// +build wireinject

package di

import (
	"SectorVol/internal/domain/repository"
	"SectorVol/pkg/config"
	"SectorVol/pkg/metrics"
	"SectorVol/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Infrastructure clients
		ProvidePriceCache,
		ProvideResultCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvidePriceLoader,
		ProvideAnomalyPublisher,

		// Analytics and use cases
		ProvideDetector,
		ProvideDashboard,

		// HTTP
		ProvideDashboardHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

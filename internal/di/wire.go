//go:build wireinject
// +build wireinject

package di

import (
	"BetPulse/pkg/config"
	"BetPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,
		ProvideDomainMetrics,
		ProvideAPIMetrics,

		// Infrastructure clients
		ProvideCacheStore,
		ProvideFetchClient,
		ProvideHealthClient,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideRecordStore,
		ProvideHTTPSource,
		ProvideBetSource,
		ProvidePredictionSource,

		// Use cases
		ProvidePerformanceAggregator,
		ProvideRecordIngestHandler,
		ProvideKafkaConsumer,
		ProvideMetricsExporter,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

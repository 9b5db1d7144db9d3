//go:build wireinject
// +build wireinject

package di

import (
	"FinDash/pkg/config"
	"FinDash/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideMongoClient,
		ProvideCacheBackend,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideDashboardStore,
		ProvideForecastArchive,
		ProvideForecastPublisher,
		ProvideQueryCache,
		ProvideRevenueProvider,

		// Use cases
		ProvideLiveHub,
		ProvideForecastUseCase,
		ProvideDashboardUseCase,
		ProvideChangesHandler,
		ProvideChangePublisher,
		ProvideSeedUseCase,

		// Transport
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

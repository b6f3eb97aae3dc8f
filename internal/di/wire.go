//go:build wireinject
// +build wireinject

package di

import (
	"TrendPulse/pkg/config"
	"TrendPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories and domain services
		ProvideSeriesStore,
		ProvideTrendsClient,
		ProvidePreprocessor,
		ProvideAssembler,
		ProvideAlertHub,
		ProvideAlertPublishers,

		// Use cases
		ProvideTrendCollector,
		ProvideReportAnalyzer,

		// HTTP API and application server
		ProvideReportsHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}

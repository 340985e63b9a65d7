//go:build wireinject
// +build wireinject

package di

import (
	"FinCast/internal/handler/api"
	"FinCast/internal/usecase"
	"FinCast/pkg/config"
	"FinCast/pkg/server"

	"github.com/google/wire"
)

var coreSet = wire.NewSet(
	// Ambient
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,

	// Infrastructure
	ProvideCaches,
	ProvideForecastService,
	ProvideWorkbookWriter,

	// Use cases
	ProvidePredictionsUseCase,
	usecase.NewExportsUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		coreSet,
		ProvideWatchlistStore,
		ProvideWatchlistUseCase,
		ProvideRateLimiter,

		// Transport
		api.NewForecastEchoHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeExporter wires the export use case for the command line tool.
func InitializeExporter(cfg *config.Config) (*usecase.ExportsUseCase, func(), error) {
	wire.Build(coreSet)
	return nil, nil, nil
}

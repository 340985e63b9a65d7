package repository

import (
	"context"

	"FinCast/internal/domain/models"
)

// ForecastService is the remote prediction service.
type ForecastService interface {
	ListSymbols(ctx context.Context) ([]models.StockInfo, error)
	Forecast(ctx context.Context, symbol string, daysAhead int) (models.PredictResponse, error)
	History(ctx context.Context, symbol string, limit int) ([]models.HistoricalPrice, error)
	Health(ctx context.Context) (models.HealthStatus, error)
	// Invalidate drops cached forecasts for symbols at every horizon.
	Invalidate(ctx context.Context, symbols ...string) error
}

// WatchlistStore persists the watch-list as a JSON array under a fixed key.
type WatchlistStore interface {
	Load(ctx context.Context) ([]models.WatchEntry, error)
	// Save writes entries; an empty slice removes the stored key.
	Save(ctx context.Context, entries []models.WatchEntry) error
}

type Metrics interface {
	RecordUpstreamRequest(op, outcome string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordExport(format, mode string)
}

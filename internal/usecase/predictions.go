package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/internal/services/align"
	"FinCast/internal/services/normalize"
	"FinCast/internal/services/recommend"
	applogger "FinCast/pkg/logger"
)

// PredictionsUseCase fetches forecasts and reconciles them into records,
// metrics and aligned tables.
type PredictionsUseCase struct {
	svc            domrepo.ForecastService
	metrics        domrepo.Metrics
	log            *applogger.Logger
	maxConcurrency int
}

func NewPredictionsUseCase(svc domrepo.ForecastService, metrics domrepo.Metrics, log *applogger.Logger, maxConcurrency int) *PredictionsUseCase {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &PredictionsUseCase{svc: svc, metrics: metrics, log: log, maxConcurrency: maxConcurrency}
}

// PredictResult is one forecast with its summary metric.
type PredictResult struct {
	Record models.ForecastRecord     `json:"record"`
	Metric models.ComparativeMetric  `json:"metric"`
	Table  models.AlignedSeriesTable `json:"table"`
}

// CompareResult holds a batch in input order.
type CompareResult struct {
	DaysAhead int                        `json:"days_ahead"`
	Records   []models.ForecastRecord    `json:"records"`
	Metrics   []models.ComparativeMetric `json:"metrics"`
	Table     models.AlignedSeriesTable  `json:"table"`
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// UniqueSymbols normalizes symbols and drops repeats, keeping first occurrence.
func UniqueSymbols(symbols []string) ([]string, error) {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = NormalizeSymbol(s)
		if s == "" {
			return nil, fmt.Errorf("%w: empty symbol", models.ErrInvalidInput)
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no symbols", models.ErrInvalidInput)
	}
	return out, nil
}

// Symbols lists the tradable symbols.
func (uc *PredictionsUseCase) Symbols(ctx context.Context) ([]models.StockInfo, error) {
	syms, err := uc.svc.ListSymbols(ctx)
	if err != nil {
		uc.metrics.RecordError("list_symbols")
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return syms, nil
}

// History returns recent daily bars for one symbol.
func (uc *PredictionsUseCase) History(ctx context.Context, symbol string, limit int) ([]models.HistoricalPrice, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", models.ErrInvalidInput)
	}
	bars, err := uc.svc.History(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", symbol, err)
	}
	return bars, nil
}

// Health reports the prediction service's model status.
func (uc *PredictionsUseCase) Health(ctx context.Context) (models.HealthStatus, error) {
	return uc.svc.Health(ctx)
}

// Invalidate drops cached forecasts so the next fetch reaches the service.
func (uc *PredictionsUseCase) Invalidate(ctx context.Context, symbols ...string) error {
	return uc.svc.Invalidate(ctx, symbols...)
}

// Predict fetches one forecast.
func (uc *PredictionsUseCase) Predict(ctx context.Context, symbol string, daysAhead int) (*PredictResult, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("predict", time.Since(start).Seconds()) }()

	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", models.ErrInvalidInput)
	}
	rec, err := uc.fetchOne(ctx, symbol, daysAhead)
	if err != nil {
		return nil, err
	}
	m, err := uc.metric(rec)
	if err != nil {
		return nil, err
	}
	return &PredictResult{
		Record: rec,
		Metric: m,
		Table:  align.Align([]models.ForecastRecord{rec}),
	}, nil
}

// Compare fetches a batch concurrently. Any failure aborts the batch and no
// partial result is returned.
func (uc *PredictionsUseCase) Compare(ctx context.Context, symbols []string, daysAhead int) (*CompareResult, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("compare", time.Since(start).Seconds()) }()

	syms, err := UniqueSymbols(symbols)
	if err != nil {
		return nil, err
	}
	recs, err := uc.FetchAll(ctx, syms, daysAhead)
	if err != nil {
		return nil, err
	}
	ms, err := uc.metricsFor(recs)
	if err != nil {
		return nil, err
	}
	return &CompareResult{
		DaysAhead: daysAhead,
		Records:   recs,
		Metrics:   ms,
		Table:     align.Align(recs),
	}, nil
}

// FetchAll fetches and normalizes symbols concurrently, preserving input order.
// The first failure cancels the rest.
func (uc *PredictionsUseCase) FetchAll(ctx context.Context, symbols []string, daysAhead int) ([]models.ForecastRecord, error) {
	results := make([]models.ForecastRecord, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.maxConcurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			rec, err := uc.fetchOne(gctx, sym, daysAhead)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (uc *PredictionsUseCase) fetchOne(ctx context.Context, symbol string, daysAhead int) (models.ForecastRecord, error) {
	raw, err := uc.svc.Forecast(ctx, symbol, daysAhead)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			uc.metrics.RecordError("forecast_fetch")
		}
		return models.ForecastRecord{}, fmt.Errorf("forecast %s: %w", symbol, err)
	}
	rec, err := normalize.Normalize(symbol, raw)
	if err != nil {
		uc.metrics.RecordError("malformed_response")
		uc.log.Warn("malformed forecast", applogger.String("symbol", symbol), applogger.Error(err))
		return models.ForecastRecord{}, err
	}
	return rec, nil
}

func (uc *PredictionsUseCase) metric(rec models.ForecastRecord) (models.ComparativeMetric, error) {
	ms, err := uc.metricsFor([]models.ForecastRecord{rec})
	if err != nil {
		return models.ComparativeMetric{}, err
	}
	return ms[0], nil
}

func (uc *PredictionsUseCase) metricsFor(recs []models.ForecastRecord) ([]models.ComparativeMetric, error) {
	ms, err := recommend.ComputeMetrics(recs)
	if err != nil {
		if errors.Is(err, models.ErrDivisionByZero) {
			uc.metrics.RecordError("division_by_zero")
			uc.log.Error("metric on unvalidated record", applogger.Error(err))
		}
		return nil, fmt.Errorf("compute metrics: %w", err)
	}
	return ms, nil
}

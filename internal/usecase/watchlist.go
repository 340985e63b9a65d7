package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
)

// DefaultWatchHorizon is the fixed horizon of a watch-list refresh.
const DefaultWatchHorizon = 7

// WatchlistUseCase manages the persisted watch-list.
type WatchlistUseCase struct {
	mu      sync.Mutex // serialises read-modify-write on the store
	store   domrepo.WatchlistStore
	preds   *PredictionsUseCase
	horizon int
	log     *applogger.Logger
}

func NewWatchlistUseCase(store domrepo.WatchlistStore, preds *PredictionsUseCase, horizon int, log *applogger.Logger) *WatchlistUseCase {
	if horizon < 1 {
		horizon = DefaultWatchHorizon
	}
	return &WatchlistUseCase{store: store, preds: preds, horizon: horizon, log: log}
}

// WatchItem is a refreshed watch-list entry.
type WatchItem struct {
	Symbol string                   `json:"symbol"`
	Record models.ForecastRecord    `json:"record"`
	Metric models.ComparativeMetric `json:"metric"`
}

type RefreshResult struct {
	DaysAhead int         `json:"days_ahead"`
	Items     []WatchItem `json:"items"`
}

func (uc *WatchlistUseCase) List(ctx context.Context) ([]models.WatchEntry, error) {
	return uc.store.Load(ctx)
}

// Add appends symbol unless already present. When the tradable list can be
// fetched, symbol must be on it.
func (uc *WatchlistUseCase) Add(ctx context.Context, symbol string) ([]models.WatchEntry, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", models.ErrInvalidInput)
	}
	if err := uc.checkTradable(ctx, symbol); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	entries, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(entries, func(e models.WatchEntry) bool { return e.Symbol == symbol }) {
		return entries, nil
	}
	entries = append(entries, models.WatchEntry{Symbol: symbol})
	if err := uc.store.Save(ctx, entries); err != nil {
		return nil, err
	}
	uc.log.Info("watchlist add", applogger.String("symbol", symbol), applogger.Int("size", len(entries)))
	return entries, nil
}

// Remove drops symbol; removing an absent symbol is a no-op.
func (uc *WatchlistUseCase) Remove(ctx context.Context, symbol string) ([]models.WatchEntry, error) {
	symbol = NormalizeSymbol(symbol)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	entries, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	kept := slices.DeleteFunc(slices.Clone(entries), func(e models.WatchEntry) bool { return e.Symbol == symbol })
	if len(kept) == len(entries) {
		return entries, nil
	}
	if err := uc.store.Save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (uc *WatchlistUseCase) Clear(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.store.Save(ctx, nil)
}

// Refresh forecasts every entry over the fixed horizon. One failure fails
// the whole refresh.
func (uc *WatchlistUseCase) Refresh(ctx context.Context) (*RefreshResult, error) {
	entries, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	res := &RefreshResult{DaysAhead: uc.horizon, Items: []WatchItem{}}
	if len(entries) == 0 {
		return res, nil
	}

	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
	}
	// a refresh asks for current forecasts, not the cached ones
	if err := uc.preds.Invalidate(ctx, symbols...); err != nil {
		uc.log.Warn("forecast cache invalidation failed", applogger.Error(err))
	}
	recs, err := uc.preds.FetchAll(ctx, symbols, uc.horizon)
	if err != nil {
		return nil, err
	}
	ms, err := uc.preds.metricsFor(recs)
	if err != nil {
		return nil, err
	}
	for i, r := range recs {
		res.Items = append(res.Items, WatchItem{Symbol: r.Symbol, Record: r, Metric: ms[i]})
	}
	return res, nil
}

func (uc *WatchlistUseCase) checkTradable(ctx context.Context, symbol string) error {
	syms, err := uc.preds.Symbols(ctx)
	if err != nil {
		uc.log.Warn("tradable list unavailable, accepting symbol",
			applogger.String("symbol", symbol), applogger.Error(err))
		return nil
	}
	if !slices.ContainsFunc(syms, func(s models.StockInfo) bool { return NormalizeSymbol(s.Symbol) == symbol }) {
		return fmt.Errorf("%w: %s", models.ErrUnknownSymbol, symbol)
	}
	return nil
}

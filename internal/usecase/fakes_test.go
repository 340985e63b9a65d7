package usecase

import (
	"context"
	"fmt"
	"sync"

	"FinCast/internal/domain/models"
	"FinCast/pkg/date"
)

// fakeForecasts serves canned responses keyed by symbol.
type fakeForecasts struct {
	mu        sync.Mutex
	responses map[string]models.PredictResponse
	steps     map[string]float64
	errs      map[string]error
	symbols   []models.StockInfo
	symbolErr error
	calls     []string
	purged    []string
	purgeErr  error
	inFlight  int
	maxFlight int
	block     chan struct{}
}

func newFakeForecasts() *fakeForecasts {
	return &fakeForecasts{
		responses: map[string]models.PredictResponse{},
		steps:     map[string]float64{},
		errs:      map[string]error{},
	}
}

// linear registers a forecast whose points move by step per day.
func (f *fakeForecasts) linear(symbol string, current, step float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[symbol] = models.PredictResponse{Symbol: symbol, CurrentPrice: current, CurrentDate: "2024-06-07"}
	f.steps[symbol] = step
}

// canned registers a response returned verbatim.
func (f *fakeForecasts) canned(symbol string, resp models.PredictResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[symbol] = resp
}

func (f *fakeForecasts) fail(symbol string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[symbol] = err
}

func (f *fakeForecasts) ListSymbols(context.Context) ([]models.StockInfo, error) {
	return f.symbols, f.symbolErr
}

func (f *fakeForecasts) History(context.Context, string, int) ([]models.HistoricalPrice, error) {
	return []models.HistoricalPrice{{TradeDate: "2024-06-07", Close: 1}}, nil
}

func (f *fakeForecasts) Health(context.Context) (models.HealthStatus, error) {
	return models.HealthStatus{Status: "healthy", ModelLoaded: true}, nil
}

func (f *fakeForecasts) Invalidate(_ context.Context, symbols ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged = append(f.purged, symbols...)
	return f.purgeErr
}

func (f *fakeForecasts) Forecast(ctx context.Context, symbol string, days int) (models.PredictResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("%s:%d", symbol, days))
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	resp, ok := f.responses[symbol]
	step := f.steps[symbol]
	err := f.errs[symbol]
	block := f.block
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if err != nil {
		return models.PredictResponse{}, err
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return models.PredictResponse{}, ctx.Err()
		}
	}
	if !ok {
		return models.PredictResponse{}, &models.UpstreamError{Status: 404, Detail: "Insufficient data for " + symbol}
	}

	if step == 0 {
		return resp, nil
	}
	asOf := date.MustParse(resp.CurrentDate)
	for i := 1; i <= days; i++ {
		resp.Predictions = append(resp.Predictions, models.PredictedPoint{
			Date:           asOf.AddDays(i).String(),
			PredictedPrice: resp.CurrentPrice + step*float64(i),
		})
	}
	return resp, nil
}

type memWatchStore struct {
	mu      sync.Mutex
	entries []models.WatchEntry
	saves   int
}

func (s *memWatchStore) Load(context.Context) ([]models.WatchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WatchEntry{}, s.entries...), nil
}

func (s *memWatchStore) Save(_ context.Context, entries []models.WatchEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if len(entries) == 0 {
		s.entries = nil
		return nil
	}
	s.entries = append([]models.WatchEntry{}, entries...)
	return nil
}

type countingMetrics struct {
	mu      sync.Mutex
	errors  map[string]int
	exports map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{errors: map[string]int{}, exports: map[string]int{}}
}

func (m *countingMetrics) RecordUpstreamRequest(string, string) {}
func (m *countingMetrics) RecordLatency(string, float64)        {}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *countingMetrics) RecordExport(format, mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports[format+"/"+mode]++
}

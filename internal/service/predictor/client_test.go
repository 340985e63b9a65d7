package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/pkg/cache"
	"FinCast/pkg/config"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	srv      *httptest.Server
	predicts atomic.Int32
	failures atomic.Int32 // 5xx responses to send before succeeding
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stocks/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/stocks/":
			writeJSON(w, http.StatusOK, []models.StockInfo{{Symbol: "TCS", YSymbol: "TCS.NS"}, {Symbol: "INFY", YSymbol: "INFY.NS"}})
		case "/api/stocks/TCS/historical":
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, []models.HistoricalPrice{
				{TradeDate: "2024-06-06", Close: 10},
				{TradeDate: "2024-06-07", Close: 11},
			})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Stock not found"})
		}
	})
	mux.HandleFunc("/api/predict/", func(w http.ResponseWriter, r *http.Request) {
		f.predicts.Add(1)
		if f.failures.Load() > 0 {
			f.failures.Add(-1)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "model warming up"})
			return
		}
		var body predictBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch body.Symbol {
		case "GARBAGE":
			_, _ = w.Write([]byte("<html>oops"))
		case "NODATA":
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Insufficient data for NODATA"})
		case "LIST":
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "field required"}}})
		case "EMPTY":
			writeJSON(w, http.StatusBadRequest, map[string]any{})
		default:
			preds := make([]models.PredictedPoint, 0, body.DaysAhead)
			for i := 0; i < body.DaysAhead; i++ {
				preds = append(preds, models.PredictedPoint{
					Date:            time.Date(2024, 6, 8+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
					PredictedPrice:  100 + float64(i),
					PredictedReturn: 1,
				})
			}
			writeJSON(w, http.StatusOK, models.PredictResponse{
				Symbol: body.Symbol, CurrentPrice: 99, CurrentDate: "2024-06-07", Predictions: preds,
			})
		}
	})
	mux.HandleFunc("/api/predict/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.HealthStatus{Status: "healthy", Device: "cpu", ModelLoaded: true})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, baseURL string, c cache.Service) *Client {
	t.Helper()
	cfg := config.Default().Predictor
	cfg.BaseURL = baseURL
	cfg.Retries = 2
	cfg.RetryWait = time.Millisecond
	return New(cfg, c, metrics.Nop{}, applogger.Nop())
}

func TestClient_Forecast(t *testing.T) {
	f := newFakeService(t)
	cl := newClient(t, f.srv.URL, nil)

	resp, err := cl.Forecast(context.Background(), "TCS", 3)
	require.NoError(t, err)
	assert.Equal(t, "TCS", resp.Symbol)
	assert.Equal(t, 99.0, resp.CurrentPrice)
	require.Len(t, resp.Predictions, 3)
	assert.Equal(t, "2024-06-10", resp.Predictions[2].Date)
}

func TestClient_ForecastRejectsHorizon(t *testing.T) {
	f := newFakeService(t)
	cl := newClient(t, f.srv.URL, nil)

	for _, days := range []int{0, 366} {
		_, err := cl.Forecast(context.Background(), "TCS", days)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
	assert.Zero(t, f.predicts.Load())
}

func TestClient_UpstreamErrors(t *testing.T) {
	f := newFakeService(t)
	cl := newClient(t, f.srv.URL, nil)

	cases := []struct {
		symbol string
		status int
		detail string
	}{
		{"NODATA", http.StatusNotFound, "Insufficient data for NODATA"},
		{"LIST", http.StatusUnprocessableEntity, "field required"},
		{"EMPTY", http.StatusBadRequest, models.FetchFailedMessage},
	}
	for _, tc := range cases {
		t.Run(tc.symbol, func(t *testing.T) {
			_, err := cl.Forecast(context.Background(), tc.symbol, 2)
			var ue *models.UpstreamError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tc.status, ue.Status)
			assert.Equal(t, tc.detail, ue.Detail)
			assert.Equal(t, tc.detail, models.UserMessage(err))
		})
	}
}

func TestClient_UndecodableBodyIsMalformed(t *testing.T) {
	f := newFakeService(t)
	cl := newClient(t, f.srv.URL, nil)

	_, err := cl.Forecast(context.Background(), "GARBAGE", 2)
	assert.ErrorIs(t, err, models.ErrMalformedResponse)
	var me *models.MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "GARBAGE", me.Symbol)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	f := newFakeService(t)
	f.failures.Store(2)
	cl := newClient(t, f.srv.URL, nil)

	_, err := cl.Forecast(context.Background(), "TCS", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, f.predicts.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	f := newFakeService(t)
	cl := newClient(t, f.srv.URL, nil)

	_, err := cl.Forecast(context.Background(), "NODATA", 1)
	require.Error(t, err)
	assert.EqualValues(t, 1, f.predicts.Load())
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cl := newClient(t, url, nil)
	_, err := cl.ListSymbols(context.Background())
	assert.ErrorIs(t, err, models.ErrUnavailable)
	assert.Equal(t, models.FetchFailedMessage, models.UserMessage(err))
}

func TestClient_CachesForecasts(t *testing.T) {
	f := newFakeService(t)
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	cl := newClient(t, f.srv.URL, mc)
	ctx := context.Background()

	a, err := cl.Forecast(ctx, "TCS", 2)
	require.NoError(t, err)
	b, err := cl.Forecast(ctx, "TCS", 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.EqualValues(t, 1, f.predicts.Load())

	ok, err := mc.Exists(ctx, "forecast:TCS:2")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = cl.Forecast(ctx, "TCS", 3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.predicts.Load())
}

func TestClient_InvalidateDropsEveryHorizon(t *testing.T) {
	f := newFakeService(t)
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	cl := newClient(t, f.srv.URL, mc)
	ctx := context.Background()

	for _, days := range []int{2, 3} {
		_, err := cl.Forecast(ctx, "TCS", days)
		require.NoError(t, err)
	}
	_, err := cl.Forecast(ctx, "TCSX", 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, f.predicts.Load())

	require.NoError(t, cl.Invalidate(ctx, "TCS"))

	for _, key := range []string{"forecast:TCS:2", "forecast:TCS:3"} {
		ok, err := mc.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	ok, err := mc.Exists(ctx, "forecast:TCSX:2")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = cl.Forecast(ctx, "TCS", 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, f.predicts.Load())

	// no cache configured
	assert.NoError(t, newClient(t, f.srv.URL, nil).Invalidate(ctx, "TCS"))
}

func TestClient_FailuresAreNotCached(t *testing.T) {
	f := newFakeService(t)
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	cl := newClient(t, f.srv.URL, mc)

	_, err := cl.Forecast(context.Background(), "NODATA", 2)
	require.Error(t, err)
	ok, _ := mc.Exists(context.Background(), "forecast:NODATA:2")
	assert.False(t, ok)
}

func TestClient_SymbolsHistoryHealth(t *testing.T) {
	f := newFakeService(t)
	cl := newClient(t, f.srv.URL, nil)
	ctx := context.Background()

	syms, err := cl.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.StockInfo{{Symbol: "TCS", YSymbol: "TCS.NS"}, {Symbol: "INFY", YSymbol: "INFY.NS"}}, syms)

	hist, err := cl.History(ctx, "TCS", 2)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 11.0, hist[1].Close)

	_, err = cl.History(ctx, "NOPE", 2)
	var ue *models.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "Stock not found", ue.Detail)

	h, err := cl.Health(ctx)
	require.NoError(t, err)
	assert.True(t, h.Healthy())
	assert.Equal(t, "cpu", h.Device)
}

func TestClient_ContextCancelled(t *testing.T) {
	f := newFakeService(t)
	cl := newClient(t, f.srv.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cl.Forecast(ctx, "TCS", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/repository"
	"FinCast/pkg/cache"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"
)

const (
	stocksPath  = "/api/stocks/"
	predictPath = "/api/predict/"
	healthPath  = "/api/predict/health"

	// MaxDaysAhead is the largest horizon the prediction service accepts.
	MaxDaysAhead = 365
)

// Client talks to the prediction service over HTTP.
type Client struct {
	http       *xhttp.Client
	cache      cache.Service
	metrics    repository.Metrics
	log        *applogger.Logger
	cacheTTL   time.Duration
	symbolsTTL time.Duration
}

var _ repository.ForecastService = (*Client)(nil)

// New builds a client from config. c may be nil to disable response caching.
func New(cfg config.PredictorConfig, c cache.Service, m repository.Metrics, log *applogger.Logger, opts ...xhttp.ClientOption) *Client {
	base := []xhttp.ClientOption{
		xhttp.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		xhttp.WithTimeout(cfg.Timeout),
		xhttp.WithRetries(cfg.Retries, cfg.RetryWait),
	}
	return &Client{
		http:       xhttp.NewClient(append(base, opts...)...),
		cache:      c,
		metrics:    m,
		log:        log.With(applogger.String("component", "predictor")),
		cacheTTL:   cfg.CacheTTL,
		symbolsTTL: cfg.SymbolsTTL,
	}
}

type predictBody struct {
	Symbol    string `json:"symbol"`
	DaysAhead int    `json:"days_ahead"`
}

// ListSymbols returns the tradable symbols.
func (c *Client) ListSymbols(ctx context.Context) ([]models.StockInfo, error) {
	return cached(ctx, c, "symbols", cache.GenerateKey("symbols", "all"), c.symbolsTTL, func(ctx context.Context) ([]models.StockInfo, error) {
		var out []models.StockInfo
		err := c.do(ctx, "", &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: stocksPath}, &out)
		return out, err
	})
}

// Forecast fetches the raw forecast for symbol over daysAhead days.
func (c *Client) Forecast(ctx context.Context, symbol string, daysAhead int) (models.PredictResponse, error) {
	if daysAhead < 1 || daysAhead > MaxDaysAhead {
		return models.PredictResponse{}, fmt.Errorf("%w: days_ahead must be in 1..%d, got %d", models.ErrInvalidInput, MaxDaysAhead, daysAhead)
	}
	key := cache.GenerateKeyWithParams("forecast", symbol, daysAhead)
	return cached(ctx, c, "forecast", key, c.cacheTTL, func(ctx context.Context) (models.PredictResponse, error) {
		var out models.PredictResponse
		err := c.do(ctx, symbol, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    predictPath,
			Body:   predictBody{Symbol: symbol, DaysAhead: daysAhead},
		}, &out)
		return out, err
	})
}

// History returns up to limit daily bars in chronological order.
func (c *Client) History(ctx context.Context, symbol string, limit int) ([]models.HistoricalPrice, error) {
	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    stocksPath + url.PathEscape(symbol) + "/historical",
	}
	if limit > 0 {
		opts.QueryParams = map[string][]string{"limit": {fmt.Sprint(limit)}}
	}
	start := time.Now()
	var out []models.HistoricalPrice
	err := c.do(ctx, symbol, opts, &out)
	c.observe("history", start, err)
	return out, err
}

// Health reports the model status. An unhealthy body is not an error.
func (c *Client) Health(ctx context.Context) (models.HealthStatus, error) {
	var out models.HealthStatus
	err := c.do(ctx, "", &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: healthPath}, &out)
	return out, err
}

// Invalidate removes every cached forecast for the given symbols.
func (c *Client) Invalidate(ctx context.Context, symbols ...string) error {
	if c.cache == nil {
		return nil
	}
	for _, s := range symbols {
		pattern := cache.BuildPattern(cache.GenerateKey("forecast", s) + ":")
		if err := c.cache.DeleteByPattern(ctx, pattern); err != nil {
			return fmt.Errorf("invalidate %s: %w", s, err)
		}
	}
	return nil
}

func cached[T any](ctx context.Context, c *Client, op, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var store cache.Service
	if ttl > 0 {
		store = c.cache
	}
	start := time.Now()
	v, hit, err := cache.GetOrLoad(ctx, store, key, ttl, load)
	if hit {
		c.metrics.RecordUpstreamRequest(op, "cached")
		return v, nil
	}
	c.observe(op, start, err)
	return v, err
}

func (c *Client) observe(op string, start time.Time, err error) {
	c.metrics.RecordLatency("upstream_"+op, time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordUpstreamRequest(op, "error")
		return
	}
	c.metrics.RecordUpstreamRequest(op, "ok")
}

// do sends the request and maps transport failures onto domain errors.
func (c *Client) do(ctx context.Context, symbol string, opts *xhttp.RequestOptions, dest any) error {
	err := c.http.SendAndParse(ctx, opts, dest)
	if err == nil {
		return nil
	}

	var se *xhttp.StatusError
	switch {
	case errors.As(err, &se):
		detail := detailFrom(se.Body)
		c.log.Warn("prediction service rejected request",
			applogger.String("url", opts.URL),
			applogger.Int("status", se.Status),
			applogger.String("detail", detail),
		)
		return &models.UpstreamError{Status: se.Status, Detail: detail}
	case errors.Is(err, xhttp.ErrDecode):
		c.log.Warn("prediction service sent undecodable body",
			applogger.String("url", opts.URL),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return &models.MalformedResponseError{Symbol: symbol, Reason: "body is not valid JSON"}
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		c.log.Error("prediction service unreachable", applogger.String("url", opts.URL), applogger.Error(err))
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
}

// detailFrom extracts the "detail" field of an error body. It is either a
// string or a list of {msg} objects; anything else gets the generic message.
func detailFrom(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &env) != nil || len(env.Detail) == 0 {
		return models.FetchFailedMessage
	}

	var s string
	if json.Unmarshal(env.Detail, &s) == nil && s != "" {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(env.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return models.FetchFailedMessage
}

package di

import (
	"fmt"
	"time"

	"FinCast/internal/domain/repository"
	domsvc "FinCast/internal/domain/service"
	"FinCast/internal/handler/api"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/service/predictor"
	"FinCast/internal/usecase"
	"FinCast/pkg/cache"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
	"FinCast/pkg/server"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Caches splits response caching from watch-list persistence so LRU
// eviction of forecasts never drops the watch-list.
type Caches struct {
	Forecast  cache.Service
	Watchlist cache.Service
}

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates a private Prometheus registry with runtime collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.NewWithRegisterer(reg)
}

// ProvideCaches builds the response cache and the watch-list store backend.
// With redis both share one connection; in memory they are separate maps.
func ProvideCaches(cfg *config.Config, log *applogger.Logger) (*Caches, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.KeyPrefix),
			cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 30*time.Second),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		forecast := cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.MemorySize),
			cache.WithLayeredMemoryTTL(time.Minute),
		)
		log.Info("cache backend ready", applogger.String("backend", "redis"), applogger.String("addr", cfg.Cache.Redis.Addr))
		return &Caches{Forecast: forecast, Watchlist: rc}, func() {
			_ = forecast.Close()
		}, nil
	default:
		forecast := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemorySize))
		watch := cache.NewMemoryCache()
		log.Info("cache backend ready", applogger.String("backend", "memory"))
		return &Caches{Forecast: forecast, Watchlist: watch}, func() {
			_ = forecast.Close()
			_ = watch.Close()
		}, nil
	}
}

// ProvideForecastService creates the prediction service client.
func ProvideForecastService(cfg *config.Config, caches *Caches, m repository.Metrics, log *applogger.Logger) repository.ForecastService {
	return predictor.New(cfg.Predictor, caches.Forecast, m, log)
}

// ProvideWatchlistStore persists the watch-list in its own cache.
func ProvideWatchlistStore(caches *Caches) repository.WatchlistStore {
	return internalrepo.NewCacheWatchlistStore(caches.Watchlist)
}

// ProvideWorkbookWriter creates the spreadsheet writer for xlsx exports.
func ProvideWorkbookWriter() domsvc.WorkbookWriter {
	return internalrepo.NewExcelWorkbookWriter()
}

func ProvidePredictionsUseCase(cfg *config.Config, svc repository.ForecastService, m repository.Metrics, log *applogger.Logger) *usecase.PredictionsUseCase {
	return usecase.NewPredictionsUseCase(svc, m, log, cfg.Predictor.MaxConcurrency)
}

func ProvideWatchlistUseCase(cfg *config.Config, store repository.WatchlistStore, preds *usecase.PredictionsUseCase, log *applogger.Logger) *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase(store, preds, cfg.Watchlist.HorizonDays, log)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config, log *applogger.Logger) echo.MiddlewareFunc {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return api.NewRateLimiter(api.RateLimitConfig{
		Rate:      cfg.RateLimit.Rate,
		Burst:     cfg.RateLimit.Burst,
		ExpiresIn: cfg.RateLimit.ExpiresIn,
	}, log)
}

// ProvideHTTPServer creates the Echo server around the API handler.
func ProvideHTTPServer(cfg *config.Config, h *api.ForecastEchoHandler, log *applogger.Logger, reg *prometheus.Registry) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h, log,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(metricsPath, reg, reg),
	)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, srv *xhttp.Server, preds *usecase.PredictionsUseCase, log *applogger.Logger) *server.App {
	return server.New(cfg, srv, preds, log)
}

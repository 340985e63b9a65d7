package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FinCast/internal/usecase"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	httpServer *xhttp.Server
	preds      *usecase.PredictionsUseCase
	log        *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	httpServer *xhttp.Server,
	preds *usecase.PredictionsUseCase,
	log *applogger.Logger,
) *App {
	return &App{cfg: cfg, httpServer: httpServer, preds: preds, log: log}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext serves until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	a.checkPredictor(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// checkPredictor logs the model state once at startup; the host still
// serves when the prediction service is down.
func (a *App) checkPredictor(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	st, err := a.preds.Health(ctx)
	switch {
	case err != nil:
		a.log.Warn("prediction service unreachable",
			applogger.String("base_url", a.cfg.Predictor.BaseURL), applogger.Error(err))
	case !st.Healthy():
		a.log.Warn("prediction service unhealthy",
			applogger.String("status", st.Status), applogger.String("error", st.Error))
	default:
		a.log.Info("prediction service ready",
			applogger.String("device", st.Device), applogger.Bool("model_loaded", st.ModelLoaded))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	// fresh context: the run context is already cancelled here
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.log.Info("shutdown complete")
	return nil
}

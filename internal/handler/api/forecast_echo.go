package api

import (
	"net/http"

	"FinCast/internal/domain/models"
	"FinCast/internal/usecase"
	xhttp "FinCast/pkg/http"
	xlogger "FinCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler serves forecasts, comparisons, the watch-list and exports.
type ForecastEchoHandler struct {
	logger  *xlogger.Logger
	preds   *usecase.PredictionsUseCase
	watch   *usecase.WatchlistUseCase
	exports *usecase.ExportsUseCase
	limit   echo.MiddlewareFunc
}

func NewForecastEchoHandler(
	logger *xlogger.Logger,
	preds *usecase.PredictionsUseCase,
	watch *usecase.WatchlistUseCase,
	exports *usecase.ExportsUseCase,
	limit echo.MiddlewareFunc,
) *ForecastEchoHandler {
	if limit == nil {
		limit = passThrough
	}
	return &ForecastEchoHandler{logger: logger, preds: preds, watch: watch, exports: exports, limit: limit}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/stocks", h.Stocks)
	g.GET("/stocks/:symbol/history", h.History)

	// routes that fan out to the prediction service
	rl := h.limit
	g.POST("/predict", h.Predict, rl)
	g.POST("/compare", h.Compare, rl)
	g.POST("/export", h.Export, rl)
	g.POST("/watchlist/refresh", h.RefreshWatchlist, rl)

	g.GET("/watchlist", h.ListWatchlist)
	g.POST("/watchlist", h.AddWatch)
	g.DELETE("/watchlist", h.ClearWatchlist)
	g.DELETE("/watchlist/:symbol", h.RemoveWatch)
}

type healthResponse struct {
	Status    string              `json:"status"`
	Predictor models.HealthStatus `json:"predictor"`
}

// Health always answers 200 while the host is up; predictor state is reported in the body.
func (h *ForecastEchoHandler) Health(c echo.Context) error {
	res := healthResponse{Status: "ok"}
	st, err := h.preds.Health(c.Request().Context())
	switch {
	case err != nil:
		h.logger.Warn("predictor health check failed", xlogger.Error(err))
		res.Status = "degraded"
		res.Predictor = models.HealthStatus{Status: "unreachable", Error: models.UserMessage(err)}
	case !st.Healthy():
		res.Status = "degraded"
		res.Predictor = st
	default:
		res.Predictor = st
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Stocks(c echo.Context) error {
	syms, err := h.preds.Symbols(c.Request().Context())
	if err != nil {
		return h.fail(c, "stocks", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.ListResponse(c, syms, int64(len(syms)))
}

func (h *ForecastEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	bars, err := h.preds.History(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		return h.fail(c, "history", err)
	}
	return xhttp.ListResponse(c, bars, int64(len(bars)))
}

func (h *ForecastEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.preds.Predict(c.Request().Context(), req.Symbol, req.DaysAhead)
	if err != nil {
		return h.fail(c, "predict", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Compare(c echo.Context) error {
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.preds.Compare(c.Request().Context(), req.Symbols, req.DaysAhead)
	if err != nil {
		return h.fail(c, "compare", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Export(c echo.Context) error {
	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	out, err := h.exports.Export(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "export", err)
	}
	return xhttp.AttachmentResponse(c, out.FileName, out.ContentType, out.Body)
}

func (h *ForecastEchoHandler) ListWatchlist(c echo.Context) error {
	entries, err := h.watch.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "watchlist list", err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *ForecastEchoHandler) AddWatch(c echo.Context) error {
	req := &models.WatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	entries, err := h.watch.Add(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "watchlist add", err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *ForecastEchoHandler) RemoveWatch(c echo.Context) error {
	req := &models.WatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	entries, err := h.watch.Remove(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "watchlist remove", err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *ForecastEchoHandler) ClearWatchlist(c echo.Context) error {
	if err := h.watch.Clear(c.Request().Context()); err != nil {
		return h.fail(c, "watchlist clear", err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *ForecastEchoHandler) RefreshWatchlist(c echo.Context) error {
	res, err := h.watch.Refresh(c.Request().Context())
	if err != nil {
		return h.fail(c, "watchlist refresh", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Warn(op+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

package api

import (
	"context"
	"errors"
	"net/http"

	"FinCast/internal/domain/models"
	xhttp "FinCast/pkg/http"
)

// toAppError maps use case failures onto HTTP errors. Upstream details are
// passed through verbatim; every other fetch failure gets the generic message.
func toAppError(err error) *xhttp.AppError {
	var (
		appErr *xhttp.AppError
		ue     *models.UpstreamError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrNothingToExport):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrUnknownSymbol):
		return xhttp.NewAppError("ERR_UNKNOWN_SYMBOL", "symbol", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.As(err, &ue):
		status := http.StatusBadGateway
		if ue.Status >= 400 && ue.Status < 500 {
			status = ue.Status
		}
		return xhttp.NewAppError("ERR_UPSTREAM", "", models.UserMessage(err), status).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.NewAppError("ERR_TIMEOUT", "", models.FetchFailedMessage, http.StatusGatewayTimeout).WithError(err)
	case errors.Is(err, models.ErrMalformedResponse), errors.Is(err, models.ErrUnavailable):
		return xhttp.BadGatewayError(models.FetchFailedMessage).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

package models

import (
	"errors"
	"fmt"
)

// FetchFailedMessage is the user-facing fallback for failed forecast fetches.
const FetchFailedMessage = "failed to fetch prediction"

var (
	// ErrMalformedResponse marks upstream payloads that violate record invariants.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrDivisionByZero is an internal-consistency fault of the metrics engine.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNothingToExport is returned when an export is requested for no records.
	ErrNothingToExport = errors.New("nothing to export")
	// ErrUnavailable wraps transport failures talking to the prediction service.
	ErrUnavailable = errors.New("prediction service unavailable")
	// ErrInvalidInput marks caller errors such as an out-of-range horizon.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownSymbol is returned when a symbol is not in the tradable list.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// MalformedResponseError carries the symbol and the violated invariant.
type MalformedResponseError struct {
	Symbol string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response for %s: %s", e.Symbol, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedResponse) hold.
func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// UpstreamError is a non-success outcome from the prediction service.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream error: %s", e.Detail)
	}
	return fmt.Sprintf("upstream error (HTTP %d): %s", e.Status, e.Detail)
}

// UserMessage returns the single message shown for a failed operation.
func UserMessage(err error) string {
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Detail != "" {
		return ue.Detail
	}
	return FetchFailedMessage
}

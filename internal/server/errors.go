package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"MarketExplorer/internal/collector"
	"MarketExplorer/internal/export"
	"MarketExplorer/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Error codes
const (
	ErrCodeInternal     = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParam = "INVALID_PARAMETER"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnsupported  = "UNSUPPORTED_INSTRUMENT"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnavailable  = "PROVIDER_UNAVAILABLE"
	ErrCodeUpstream     = "PROVIDER_ERROR"
	ErrCodeSuperseded   = "SUPERSEDED"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeNoData       = "NO_DATA"
	ErrCodeCanceled     = "REQUEST_CANCELED"
)

// StatusClientClosedRequest is reported when the caller went away before the load finished.
const StatusClientClosedRequest = 499

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

func writeError(c *gin.Context, status int, code, message string, retryable bool) {
	c.JSON(status, ErrorResponse{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		RequestID: requestID(c),
		Timestamp: time.Now().UTC(),
	}})
}

func badRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, ErrCodeInvalidParam, message, false)
}

// classify maps a load or export error to its HTTP status and code.
func classify(err error) (status int, code string, retryable bool) {
	var unsupported *collector.UnsupportedInstrumentError
	var fetch *collector.DataFetchError
	switch {
	case errors.As(err, &unsupported):
		return http.StatusNotFound, ErrCodeUnsupported, false
	case errors.As(err, &fetch):
		switch fetch.Kind {
		case collector.KindRateLimited:
			return http.StatusTooManyRequests, ErrCodeRateLimited, true
		case collector.KindNotFound:
			return http.StatusNotFound, ErrCodeNotFound, false
		case collector.KindConnectivity:
			return http.StatusServiceUnavailable, ErrCodeUnavailable, true
		default:
			return http.StatusBadGateway, ErrCodeUpstream, fetch.Retryable()
		}
	case errors.Is(err, store.ErrSuperseded):
		return http.StatusConflict, ErrCodeSuperseded, true
	case errors.Is(err, export.ErrNoData):
		return http.StatusNotFound, ErrCodeNoData, false
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout, true
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, ErrCodeCanceled, true
	}
	return http.StatusBadGateway, ErrCodeUpstream, false
}

func respondError(c *gin.Context, err error) {
	status, code, retryable := classify(err)
	_ = c.Error(err)
	log.Error().Err(err).
		Str("request_id", requestID(c)).
		Str("error_code", code).
		Int("status", status).
		Msg("API error response")
	writeError(c, status, code, err.Error(), retryable)
}

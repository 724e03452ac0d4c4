package collector

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies a failed provider call.
type FetchErrorKind string

const (
	KindRateLimited  FetchErrorKind = "rate_limited"
	KindNotFound     FetchErrorKind = "not_found"
	KindConnectivity FetchErrorKind = "connectivity"
	KindAPI          FetchErrorKind = "api"
	KindDecode       FetchErrorKind = "decode"
)

// DataFetchError is a network or API failure from a quote provider.
type DataFetchError struct {
	Provider   string
	Instrument string
	Kind       FetchErrorKind
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *DataFetchError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Provider, e.Instrument, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// Retryable reports whether trying again later can succeed.
func (e *DataFetchError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindConnectivity
}

// kindForStatus maps a non-2xx status to its error kind.
func kindForStatus(status int) FetchErrorKind {
	switch status {
	case 429:
		return KindRateLimited
	case 404:
		return KindNotFound
	default:
		return KindAPI
	}
}

// UnsupportedInstrumentError means the symbol cannot be mapped to a provider id.
type UnsupportedInstrumentError struct {
	Provider   string
	Instrument string
}

func (e *UnsupportedInstrumentError) Error() string {
	return fmt.Sprintf("%s: unsupported instrument %q", e.Provider, e.Instrument)
}

// IsRetryable reports whether err wraps a retryable DataFetchError.
func IsRetryable(err error) bool {
	var dfe *DataFetchError
	return errors.As(err, &dfe) && dfe.Retryable()
}

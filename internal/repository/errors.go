package repository

import (
	"errors"
	"fmt"
)

var (
	ErrAPIKeyMissing = errors.New("API key missing")
	// ErrUpstream matches every *UpstreamError.
	ErrUpstream = errors.New("weather provider request failed")
)

// UpstreamKind separates provider-reported failures from transport failures.
type UpstreamKind int

const (
	// Transport covers network errors, timeouts, non-2xx statuses and unreadable bodies.
	Transport UpstreamKind = iota
	// ProviderReported is a response whose body carries an "error" object.
	ProviderReported
)

func (k UpstreamKind) String() string {
	if k == ProviderReported {
		return "provider_reported"
	}
	return "transport"
}

// UpstreamError describes a failed call to the weather provider.
type UpstreamError struct {
	Kind   UpstreamKind
	Detail string
	// Code is the provider's error code, set only for ProviderReported.
	Code int
	Err  error
}

func (e *UpstreamError) Error() string {
	if e.Kind == ProviderReported {
		return "Weather API error: " + e.Detail
	}
	return "Failed to fetch weather data: " + e.Detail
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstream, e.Err}
	}
	return []error{ErrUpstream}
}

func transportError(err error) *UpstreamError {
	return &UpstreamError{Kind: Transport, Detail: err.Error(), Err: err}
}

func statusError(code int, status string) *UpstreamError {
	return &UpstreamError{Kind: Transport, Detail: fmt.Sprintf("unexpected status %s", statusText(code, status))}
}

func statusText(code int, status string) string {
	if status != "" {
		return status
	}
	return fmt.Sprintf("%d", code)
}

package alphavantage

import "fmt"

// ErrRateLimitExceeded is returned when the provider throttles the request
// or the local daily request budget is exhausted.
type ErrRateLimitExceeded struct{}

func (e ErrRateLimitExceeded) Error() string {
	return "alpha vantage rate limit exceeded"
}

// ErrSymbolNotFound is returned when the provider has no daily series for
// the requested symbol.
type ErrSymbolNotFound struct {
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("alpha vantage has no data for symbol %s", e.Symbol)
}

// ErrInvalidAPIKey is returned when no API key is configured
type ErrInvalidAPIKey struct{}

func (e ErrInvalidAPIKey) Error() string {
	return "alpha vantage API key is missing or invalid"
}

// ErrUpstream is returned for transport-level failures (non-200 responses,
// malformed bodies).
type ErrUpstream struct {
	StatusCode int
}

func (e ErrUpstream) Error() string {
	return fmt.Sprintf("alpha vantage upstream error (status %d)", e.StatusCode)
}

package catalog

import "fmt"

// AuthError represents a rejected or missing credential. Monitoring is
// disabled for the run; the process keeps serving its control plane.
type AuthError struct {
	Message  string
	Original error
}

func (e *AuthError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("catalog auth error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("catalog auth error: %s", e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Original
}

// RateLimitError represents an HTTP 429 from the catalog API.
type RateLimitError struct {
	RetryAfter int // Seconds to wait before retrying
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("catalog API rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "catalog API rate limited"
}

// APIError represents any other non-2xx response from the catalog API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API error: status %d: %s", e.StatusCode, e.Message)
}

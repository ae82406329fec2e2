package trakt

import (
	"fmt"
	"net/http"

	"github.com/mmcdole/shelf/internal/domain"
)

// HTTPError is returned for any non-2xx response
type HTTPError struct {
	StatusCode int
	Status     string
	Path       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s returned %s", e.Path, e.Status)
}

// Topic is the user-facing heading for this failure
func (e *HTTPError) Topic() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return "Authentication failed"
	case e.StatusCode == http.StatusNotFound:
		return "Not found"
	case e.StatusCode == http.StatusTooManyRequests:
		return "Too many requests"
	case e.StatusCode >= 500:
		return "Server error"
	default:
		return "Request rejected"
	}
}

// Unwrap maps well-known status codes to domain sentinels
func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthFailed
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

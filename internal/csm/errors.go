package csm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthenticationFailed reports that a request was rejected for
// credentials even after the one permitted refresh-and-retry.
var ErrAuthenticationFailed = errors.New("authentication failed")

// APIError is a non-2xx response from a backend. The body is kept verbatim
// because the services answer with either plain text or a JSON problem
// document depending on the failure.
type APIError struct {
	Backend    string
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s %s: HTTP %d: %s", e.Backend, e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from a backend.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsAuthRejection reports whether err is a credential rejection.
func IsAuthRejection(err error) bool {
	return hasStatus(err, http.StatusUnauthorized, http.StatusForbidden)
}

// isRetryableStatus classifies response codes worth retrying: rate limiting
// and server-side failures. Auth rejections are handled separately by the
// refresh-once path and everything else in the 4xx range is final.
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func hasStatus(err error, statuses ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, s := range statuses {
		if apiErr.StatusCode == s {
			return true
		}
	}
	return false
}

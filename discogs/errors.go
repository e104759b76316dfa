package discogs

import (
	stderrors "errors"
	"fmt"
	"net/http"

	perrors "github.com/jmgilman/go/errors"
)

// HTTPError is a non-2xx answer from the upstream API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("discogs: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("discogs: HTTP %d: %s", e.StatusCode, e.Message)
}

// codeForStatus maps an upstream status to an error code.
func codeForStatus(status int) perrors.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return perrors.CodeNotFound
	case status == http.StatusTooManyRequests:
		return perrors.CodeRateLimit
	case status >= 500:
		return perrors.CodeUnavailable
	case status == http.StatusUnauthorized:
		return perrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return perrors.CodeForbidden
	default:
		return perrors.CodeExecutionFailed
	}
}

func statusError(op string, status int, message string) error {
	httpErr := &HTTPError{StatusCode: status, Message: message}
	return perrors.WithContext(
		perrors.Wrapf(httpErr, codeForStatus(status), "%s: upstream returned %d", op, status),
		"status", status,
	)
}

// IsNotFound reports whether err is an upstream not-found condition.
func IsNotFound(err error) bool {
	return perrors.GetCode(err) == perrors.CodeNotFound
}

// IsRateLimited reports whether err is an upstream rate-limit rejection.
func IsRateLimited(err error) bool {
	return perrors.GetCode(err) == perrors.CodeRateLimit
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

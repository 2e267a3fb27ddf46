package ports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory is the normalized failure taxonomy for external collaborators.
type ErrorCategory string

const (
	// ErrorTimeout indicates the collaborator took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates a response that could not be decoded
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorOutage indicates the collaborator is unavailable
	ErrorOutage ErrorCategory = "outage"

	// ErrorRejected indicates the collaborator refused the request
	ErrorRejected ErrorCategory = "rejected"

	// ErrorRateLimited indicates too many requests
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorNotFound indicates the requested object does not exist
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorInternal indicates an unexpected error
	ErrorInternal ErrorCategory = "internal"
)

// UpstreamError wraps collaborator failures with a category.
type UpstreamError struct {
	Category   ErrorCategory
	Service    string
	Message    string
	StatusCode int
	Underlying error
	Retryable  bool
}

func (e *UpstreamError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Service, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Service, e.Category, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Underlying
}

// NewUpstreamError creates a categorized collaborator error.
func NewUpstreamError(category ErrorCategory, service, message string, underlying error) *UpstreamError {
	retryable := category == ErrorTimeout ||
		category == ErrorOutage ||
		category == ErrorRateLimited

	return &UpstreamError{
		Category:   category,
		Service:    service,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// NewHTTPError categorizes a non-2xx response. body is included in the message.
func NewHTTPError(service string, statusCode int, body string) *UpstreamError {
	msg := body
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	e := NewUpstreamError(CategoryForStatus(statusCode), service, msg, nil)
	e.StatusCode = statusCode
	return e
}

// NewTransportError categorizes a failure to complete the request at all.
func NewTransportError(service string, err error) *UpstreamError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewUpstreamError(ErrorTimeout, service, "request timed out", err)
	}
	return NewUpstreamError(ErrorOutage, service, "request failed", err)
}

// CategoryForStatus maps an HTTP status to an error category.
func CategoryForStatus(code int) ErrorCategory {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrorAuthentication
	case code == http.StatusNotFound:
		return ErrorNotFound
	case code == http.StatusTooManyRequests:
		return ErrorRateLimited
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return ErrorTimeout
	case code >= 500:
		return ErrorOutage
	case code >= 400:
		return ErrorRejected
	default:
		return ErrorInternal
	}
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error
func GetCategory(err error) ErrorCategory {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Category
	}
	return ErrorInternal
}

// ErrCircuitOpen is returned while a collaborator's circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit open")

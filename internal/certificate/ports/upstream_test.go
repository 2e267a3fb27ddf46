package ports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryForStatus(t *testing.T) {
	cases := map[int]ErrorCategory{
		http.StatusUnauthorized:        ErrorAuthentication,
		http.StatusForbidden:           ErrorAuthentication,
		http.StatusNotFound:            ErrorNotFound,
		http.StatusTooManyRequests:     ErrorRateLimited,
		http.StatusGatewayTimeout:      ErrorTimeout,
		http.StatusServiceUnavailable:  ErrorOutage,
		http.StatusUnprocessableEntity: ErrorRejected,
	}
	for status, want := range cases {
		assert.Equal(t, want, CategoryForStatus(status), "status %d", status)
	}
}

func TestUpstreamError_RetryableAndUnwrap(t *testing.T) {
	err := fmt.Errorf("verify: %w", NewTransportError("oracle", context.DeadlineExceeded))

	assert.True(t, IsRetryable(err))
	assert.Equal(t, ErrorTimeout, GetCategory(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	httpErr := NewHTTPError("oracle", http.StatusBadRequest, "bad certificate id")
	assert.False(t, IsRetryable(httpErr))
	assert.Contains(t, httpErr.Error(), "bad certificate id")
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)

	assert.Equal(t, ErrorInternal, GetCategory(errors.New("plain")))
}

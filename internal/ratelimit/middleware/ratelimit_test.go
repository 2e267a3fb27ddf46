package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certifly/internal/ratelimit/metrics"
	"certifly/internal/ratelimit/models"
	"certifly/internal/ratelimit/store/bucket"
	id "certifly/pkg/domain"
	metadata "certifly/pkg/platform/middleware/metadata"
	"certifly/pkg/requestcontext"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func fromIP(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	return req.WithContext(metadata.WithClient(req.Context(), metadata.Client{IP: ip, UserAgent: "test"}))
}

func asUser(method string, userID id.UserID) *http.Request {
	req := httptest.NewRequest(method, "/api/certificates", nil)
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

func TestRateLimit_ByIP(t *testing.T) {
	reg := prometheus.NewRegistry()
	mt := metrics.New(reg)
	m := New(bucket.NewInMemoryBucketStore(), discard(),
		WithLimit(models.ClassAuth, models.Limit{Requests: 2, Window: time.Minute}),
		WithMetrics(mt),
	)
	h := m.RateLimit(models.ClassAuth)(okHandler)

	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("192.0.2.1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, fromIP("192.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate_limit_exceeded","error_description":"Too many requests. Please try again later.","retry_after":`+
		rec.Header().Get("Retry-After")+`}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, fromIP("192.0.2.2"))
	assert.Equal(t, http.StatusOK, rec.Code, "other clients keep their own budget")

	assert.Equal(t, 3.0, testutil.ToFloat64(mt.Decisions.WithLabelValues("auth", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Decisions.WithLabelValues("auth", "rejected")))
}

func TestRateLimitAuthenticated_SeparatesReadsAndWrites(t *testing.T) {
	m := New(bucket.NewInMemoryBucketStore(), discard(),
		WithLimit(models.ClassRead, models.Limit{Requests: 3, Window: time.Minute}),
		WithLimit(models.ClassWrite, models.Limit{Requests: 1, Window: time.Minute}),
	)
	h := m.RateLimitAuthenticated(okHandler)
	userID := id.UserID(uuid.New())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(http.MethodPost, userID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(http.MethodPost, userID))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "second mutation exceeds the write budget")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(http.MethodGet, userID))
	assert.Equal(t, http.StatusOK, rec.Code, "reads are budgeted separately")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(http.MethodPost, id.UserID(uuid.New())))
	assert.Equal(t, http.StatusOK, rec.Code, "budgets are per user")
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	reg := prometheus.NewRegistry()
	mt := metrics.New(reg)
	h := New(failingStore{}, discard(), WithMetrics(mt)).RateLimit(models.ClassAuth)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, fromIP("192.0.2.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.StoreErrors))
}

func TestRateLimit_Disabled(t *testing.T) {
	h := New(failingStore{}, discard(), WithDisabled(true)).RateLimit(models.ClassAuth)(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, fromIP("192.0.2.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &models.RateLimitResult{ResetAt: now.Add(2500 * time.Millisecond)}
	assert.Equal(t, 3*time.Second, r.RetryAfter(now))

	r = &models.RateLimitResult{ResetAt: now.Add(-time.Second)}
	assert.Equal(t, time.Second, r.RetryAfter(now))
}

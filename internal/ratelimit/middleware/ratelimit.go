package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"certifly/internal/ratelimit/metrics"
	"certifly/internal/ratelimit/models"
	metadata "certifly/pkg/platform/middleware/metadata"
	request "certifly/pkg/platform/middleware/request"
	"certifly/pkg/requestcontext"
)

// BucketStore admits or rejects one request against a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	store    BucketStore
	limits   map[models.EndpointClass]models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
	now      func() time.Time
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// WithLimit overrides the limit for one class.
func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(m *Middleware) {
		if limit.Requests > 0 && limit.Window > 0 {
			m.limits[class] = limit
		}
	}
}

// DefaultLimits are applied to classes without an explicit WithLimit.
func DefaultLimits() map[models.EndpointClass]models.Limit {
	return map[models.EndpointClass]models.Limit{
		models.ClassAuth:  {Requests: 10, Window: time.Minute},
		models.ClassRead:  {Requests: 120, Window: time.Minute},
		models.ClassWrite: {Requests: 30, Window: time.Minute},
	}
}

func New(store BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limits: DefaultLimits(),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests per client IP. Used in front of routes that run
// before a caller is authenticated.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := metadata.GetClientIP(r.Context())
			if m.admit(w, r, class, ip) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RateLimitAuthenticated limits requests per user. Reads and mutations are
// counted in separate buckets. Mount after RequireAuth.
func (m *Middleware) RateLimitAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := models.ClassWrite
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			class = models.ClassRead
		}
		subject := requestcontext.UserID(r.Context()).String()
		if m.admit(w, r, class, subject) {
			next.ServeHTTP(w, r)
		}
	})
}

// admit reports whether the request may proceed. A failing store lets the
// request through.
func (m *Middleware) admit(w http.ResponseWriter, r *http.Request, class models.EndpointClass, subject string) bool {
	if m.disabled {
		return true
	}
	limit, ok := m.limits[class]
	if !ok || subject == "" {
		return true
	}

	ctx := r.Context()
	result, err := m.store.Allow(ctx, models.Key(class, subject), limit.Requests, limit.Window)
	if err != nil {
		m.metrics.IncStoreErrors()
		m.logger.ErrorContext(ctx, "failed to check rate limit",
			"error", err,
			"class", string(class),
			"request_id", request.GetRequestID(ctx),
		)
		return true
	}
	m.metrics.ObserveDecision(string(class), result.Allowed)

	addRateLimitHeaders(w, result)
	if !result.Allowed {
		m.logger.WarnContext(ctx, "rate limit exceeded",
			"class", string(class),
			"request_id", request.GetRequestID(ctx),
		)
		writeRateLimitExceeded(w, result, m.now())
		return false
	}
	return true
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult, now time.Time) {
	retryAfter := int(result.RetryAfter(now).Seconds())
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":             "rate_limit_exceeded",
		"error_description": "Too many requests. Please try again later.",
		"retry_after":       retryAfter,
	})
}

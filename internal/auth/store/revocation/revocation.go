// Package revocation records session credentials that were revoked before
// they expired. Entries live exactly as long as the credential could still be
// presented; revoking an identifier again never shortens that window.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"certifly/pkg/platform/sentinel"
)

var checkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "certifly_revocation_check_duration_seconds",
	Help:    "Latency of credential revocation lookups",
	Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
}, []string{"backend"})

// Clock returns the current time.
type Clock func() time.Time

// TokenRevocationList records credentials that were revoked before expiry.
type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type options struct {
	clock Clock
}

// Option configures the clock-driven lists (memory and Postgres).
type Option func(*options)

func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("revocation ttl %s: %w", ttl, sentinel.ErrInvalidState)
	}
	return nil
}

func observeCheck(backend string, start time.Time) {
	checkDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}

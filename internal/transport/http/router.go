package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"certifly/internal/platform/metrics"
	ratelimitmw "certifly/internal/ratelimit/middleware"
	"certifly/internal/ratelimit/models"
	"certifly/pkg/platform/httputil"
	authmw "certifly/pkg/platform/middleware/auth"
	metadata "certifly/pkg/platform/middleware/metadata"
	request "certifly/pkg/platform/middleware/request"
)

// Registrar mounts a feature's routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// PublicRegistrar mounts routes that are reachable without a credential.
type PublicRegistrar interface {
	RegisterPublic(r chi.Router)
}

// ReadinessCheck reports whether one backing dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Deps carries everything the router mounts.
type Deps struct {
	Logger     *slog.Logger
	Gatherer   prometheus.Gatherer
	Validator  authmw.JWTValidator
	Revocation authmw.TokenRevocationChecker
	Auth       interface {
		Registrar
		PublicRegistrar
	}
	Features  []Registrar
	Readiness map[string]ReadinessCheck
	// RateLimiter is optional; nil leaves every route unlimited.
	RateLimiter *ratelimitmw.Middleware
}

const readinessTimeout = 2 * time.Second

// NewRouter wires every endpoint. Authenticated routes live under /api behind
// RequireAuth; /healthz, /readyz and /metrics stay public.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Context)
	r.Use(request.AccessLog(deps.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readyz(deps.Readiness, deps.Logger))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			if deps.RateLimiter != nil {
				public.Use(deps.RateLimiter.RateLimit(models.ClassAuth))
			}
			if deps.Auth != nil {
				deps.Auth.RegisterPublic(public)
			}
		})
		api.Group(func(protected chi.Router) {
			protected.Use(authmw.RequireAuth(deps.Validator, deps.Revocation, deps.Logger))
			if deps.RateLimiter != nil {
				protected.Use(deps.RateLimiter.RateLimitAuthenticated)
			}
			if deps.Auth != nil {
				deps.Auth.Register(protected)
			}
			for _, f := range deps.Features {
				f.Register(protected)
			}
		})
	})
	return r
}

func readyz(checks map[string]ReadinessCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed",
					"dependency", name,
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				report[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		httputil.WriteJSON(w, status, report)
	}
}

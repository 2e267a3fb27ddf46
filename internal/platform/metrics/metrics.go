package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds identity metrics shared across the application.
type Metrics struct {
	UsersCreated prometheus.Counter
	Logins       *prometheus.CounterVec
}

// New creates identity metrics registered on reg. A nil reg leaves them
// unregistered, which keeps tests free of duplicate-registration panics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "certifly_users_created_total",
			Help: "Total number of users created on first wallet login",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifly_logins_total",
			Help: "Wallet login attempts by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// ObserveLogin records a login outcome (success, invalid_signature, error).
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry for scraping.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

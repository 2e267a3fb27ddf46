package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks certificate lifecycle activity.
type Metrics struct {
	Submissions     *prometheus.CounterVec
	Verifications   *prometheus.CounterVec
	Mints           *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
}

// New registers certificate metrics on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifly_certificates_submitted_total",
			Help: "Certificates created, by upload mode",
		}, []string{"mode"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifly_verifications_total",
			Help: "Verification requests by result",
		}, []string{"result"}),
		Mints: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifly_mints_total",
			Help: "Mint requests by result",
		}, []string{"result"}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certifly_upstream_request_duration_seconds",
			Help:    "Latency of calls to the oracle, ledger and minting service",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "outcome"}),
	}
}

func (m *Metrics) IncSubmission(mode string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(mode).Inc()
}

func (m *Metrics) IncVerification(result string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(result).Inc()
}

func (m *Metrics) IncMint(result string) {
	if m == nil {
		return
	}
	m.Mints.WithLabelValues(result).Inc()
}

// ObserveUpstream records how long a collaborator call took.
func (m *Metrics) ObserveUpstream(service string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamLatency.WithLabelValues(service, outcome).Observe(time.Since(start).Seconds())
}

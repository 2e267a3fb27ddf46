package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncVerification("transitioned")
	m.IncVerification("transitioned")
	m.IncMint("upstream_error")
	m.ObserveUpstream("oracle", time.Now(), errors.New("boom"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.Verifications.WithLabelValues("transitioned")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Mints.WithLabelValues("upstream_error")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.IncSubmission("direct")
	m.IncVerification("x")
	m.IncMint("x")
	m.ObserveUpstream("oracle", time.Now(), nil)
}

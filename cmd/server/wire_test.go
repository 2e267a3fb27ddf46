package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"certifly/internal/platform/config"
)

func TestBuild_InMemory(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.Default()
	cfg.Auth.JWTSigningKey = "test-key"
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := build(context.Background(), cfg, log)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.pgTRL)

	do := func(method, path string, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/certificates", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/api/mint/x", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/auth/login", "{}").Code)

	metrics := do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metrics.Code, metrics.Body.String())
	assert.Contains(t, metrics.Body.String(), "go_goroutines")
	assert.Contains(t, metrics.Body.String(), "certifly_users_created_total")
}

func TestBuild_MetricsScrapeIsRepeatable(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.JWTSigningKey = "test-key"

	a, err := build(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.Close()

	for range 2 {
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, strings.Count(rec.Body.String(), "# TYPE go_goroutines "), "runtime collectors are exported once")
	}
}

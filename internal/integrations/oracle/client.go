// Package oracle talks to the external certificate verification service.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"certifly/internal/certificate/ports"
	id "certifly/pkg/domain"
	"certifly/pkg/platform/circuit"
)

const (
	serviceName      = "oracle"
	maxResponseBytes = 1 << 20
	maxErrorBody     = 1024
)

// Client calls GET {base}/verify/{userID}/{certID} with a bearer API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    circuit.New(serviceName),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify asks the oracle for a verdict. Non-2xx responses become
// ports.UpstreamError carrying the response body.
func (c *Client) Verify(ctx context.Context, userID id.UserID, certID id.CertificateID) (*ports.Verdict, error) {
	if !c.breaker.Allow() {
		return nil, ports.NewUpstreamError(ports.ErrorOutage, serviceName, "circuit open", ports.ErrCircuitOpen)
	}

	verdict, err := c.verify(ctx, userID, certID)
	if err != nil {
		// Verdict-level problems say nothing about the oracle's health.
		if ports.IsRetryable(err) {
			if _, change := c.breaker.RecordFailure(); change.Opened {
				c.logger.WarnContext(ctx, "oracle circuit opened", "error", err)
			}
		}
		return nil, err
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "oracle circuit closed")
	}
	return verdict, nil
}

func (c *Client) verify(ctx context.Context, userID id.UserID, certID id.CertificateID) (*ports.Verdict, error) {
	reqURL := c.baseURL + "/verify/" + url.PathEscape(userID.String()) + "/" + url.PathEscape(certID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ports.NewTransportError(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, ports.NewHTTPError(serviceName, resp.StatusCode, string(body))
	}

	var verdict ports.Verdict
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&verdict); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ports.NewTransportError(serviceName, err)
		}
		return nil, ports.NewUpstreamError(ports.ErrorBadData, serviceName, "invalid verdict payload", err)
	}
	if verdict.Status == "" {
		return nil, ports.NewUpstreamError(ports.ErrorBadData, serviceName, "verdict has no status", nil)
	}
	return &verdict, nil
}

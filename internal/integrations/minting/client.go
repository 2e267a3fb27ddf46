// Package minting issues tokens of authenticity for anchored certificates.
package minting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"certifly/internal/certificate/ports"
)

const (
	serviceName      = "minter"
	maxResponseBytes = 64 << 10
	maxErrorBody     = 1024
)

// Client posts mint requests as JSON to {base}/mint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type mintResponse struct {
	MintAddress string `json:"mintAddress"`
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Mint(ctx context.Context, mr ports.MintRequest) (string, error) {
	payload, err := json.Marshal(mr)
	if err != nil {
		return "", fmt.Errorf("encoding mint request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mint", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", ports.NewTransportError(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", ports.NewHTTPError(serviceName, resp.StatusCode, string(body))
	}

	var out mintResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", ports.NewUpstreamError(ports.ErrorBadData, serviceName, "invalid mint response", err)
	}
	if out.MintAddress == "" {
		return "", ports.NewUpstreamError(ports.ErrorBadData, serviceName, "mint response has no mintAddress", nil)
	}
	return out.MintAddress, nil
}

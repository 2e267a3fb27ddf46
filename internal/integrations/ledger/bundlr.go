// Package ledger anchors certificate documents on permanent storage.
package ledger

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
	serviceName      = "ledger"
	maxResponseBytes = 64 << 10
	maxErrorBody     = 1024
	tagsHeader       = "X-Tags"
)

// BundlrUploader posts documents to a Bundlr-style upload node. Tags travel
// as a JSON array in a request header; the returned transaction id is joined
// to the gateway URL to form the permanent address.
type BundlrUploader struct {
	nodeURL    string
	gatewayURL string
	apiKey     string
	httpClient *http.Client
}

type uploadResponse struct {
	ID string `json:"id"`
}

type Option func(*BundlrUploader)

func WithHTTPClient(hc *http.Client) Option {
	return func(u *BundlrUploader) {
		if hc != nil {
			u.httpClient = hc
		}
	}
}

func NewBundlrUploader(nodeURL, gatewayURL, apiKey string, timeout time.Duration, opts ...Option) *BundlrUploader {
	u := &BundlrUploader{
		nodeURL:    strings.TrimRight(nodeURL, "/"),
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *BundlrUploader) Upload(ctx context.Context, data []byte, tags []ports.Tag) (string, error) {
	encodedTags, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.nodeURL+"/tx", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(tagsHeader, string(encodedTags))
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", ports.NewTransportError(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", ports.NewHTTPError(serviceName, resp.StatusCode, string(body))
	}

	var out uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", ports.NewUpstreamError(ports.ErrorBadData, serviceName, "invalid upload response", err)
	}
	if out.ID == "" {
		return "", ports.NewUpstreamError(ports.ErrorBadData, serviceName, "upload response has no id", nil)
	}
	return u.gatewayURL + "/" + out.ID, nil
}

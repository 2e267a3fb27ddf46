package minting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certifly/internal/certificate/ports"
	id "certifly/pkg/domain"
)

func newRequest() ports.MintRequest {
	return ports.MintRequest{
		LedgerAddress: "https://arweave.net/tx1",
		Title:         "BSc Computer Science",
		Description:   "MIT - Computer Science",
		OwnerWallet:   "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		CertificateID: id.CertificateID(uuid.New()),
		UserID:        id.UserID(uuid.New()),
	}
}

func TestClient_Mint(t *testing.T) {
	t.Run("posts the request and returns the mint address", func(t *testing.T) {
		want := newRequest()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/mint", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, want.Description, body["description"])
			assert.Equal(t, want.CertificateID.String(), body["certificateId"])
			_, _ = w.Write([]byte(`{"mintAddress":"Mint111"}`))
		}))
		defer srv.Close()

		mintID, err := NewClient(srv.URL, "secret", time.Second).Mint(context.Background(), want)
		require.NoError(t, err)
		assert.Equal(t, "Mint111", mintID)
	})

	t.Run("missing mint address is bad data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "", time.Second).Mint(context.Background(), newRequest())
		assert.Equal(t, ports.ErrorBadData, ports.GetCategory(err))
	})
}

func TestFake_DeterministicAndScriptedFailures(t *testing.T) {
	f := NewFake()
	req := newRequest()

	f.FailNext(errors.New("rpc down"))
	_, err := f.Mint(context.Background(), req)
	require.Error(t, err)

	first, err := f.Mint(context.Background(), req)
	require.NoError(t, err)
	second, err := f.Mint(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, f.Calls())
}

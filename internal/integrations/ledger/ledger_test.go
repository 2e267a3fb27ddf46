package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certifly/internal/certificate/ports"
)

var testTags = []ports.Tag{
	{Name: "Content-Type", Value: "application/pdf"},
	{Name: "Certificate-Id", Value: "c-1"},
}

func TestBundlrUploader_Upload(t *testing.T) {
	t.Run("posts bytes with tags and returns gateway address", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/tx", r.URL.Path)
			assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
			var tags []ports.Tag
			require.NoError(t, json.Unmarshal([]byte(r.Header.Get(tagsHeader)), &tags))
			assert.Equal(t, testTags, tags)
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "%PDF-1.4 doc", string(body))
			_, _ = w.Write([]byte(`{"id":"tx123"}`))
		}))
		defer srv.Close()

		u := NewBundlrUploader(srv.URL, "https://arweave.net/", "", time.Second)
		addr, err := u.Upload(context.Background(), []byte("%PDF-1.4 doc"), testTags)
		require.NoError(t, err)
		assert.Equal(t, "https://arweave.net/tx123", addr)
	})

	t.Run("node failure is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "insufficient balance", http.StatusPaymentRequired)
		}))
		defer srv.Close()

		_, err := NewBundlrUploader(srv.URL, "https://arweave.net", "", time.Second).
			Upload(context.Background(), []byte("x"), nil)
		var ue *ports.UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, ports.ErrorRejected, ue.Category)
		assert.Contains(t, ue.Message, "insufficient balance")
	})
}

func TestMemoryLedger_ContentAddressed(t *testing.T) {
	l := NewMemory()
	a, err := l.Upload(context.Background(), []byte("doc-a"), testTags)
	require.NoError(t, err)
	again, err := l.Upload(context.Background(), []byte("doc-a"), nil)
	require.NoError(t, err)
	b, err := l.Upload(context.Background(), []byte("doc-b"), nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, AddressScheme))
	assert.Len(t, strings.TrimPrefix(a, AddressScheme), 64)
	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 3, l.Uploads())

	tags, ok := l.Tags(a)
	require.True(t, ok)
	assert.Equal(t, testTags, tags, "first upload's tags are kept")
}

func TestMemoryLedger_FailNext(t *testing.T) {
	l := NewMemory()
	l.FailNext(ports.NewHTTPError(serviceName, http.StatusServiceUnavailable, "node busy"))

	_, err := l.Upload(context.Background(), []byte("%PDF-1.4 doc"), testTags)
	var ue *ports.UpstreamError
	require.ErrorAs(t, err, &ue)

	addr, err := l.Upload(context.Background(), []byte("%PDF-1.4 doc"), testTags)
	require.NoError(t, err)
	_, ok := l.Tags(addr)
	assert.True(t, ok, "only the successful upload is stored")
	assert.Equal(t, 2, l.Uploads())
}

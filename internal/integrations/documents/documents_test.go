package documents

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certifly/internal/platform/config"
	"certifly/pkg/platform/sentinel"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("https://files.example/")

	url, err := m.Put(ctx, "certificates/u/c.pdf", []byte("%PDF-1.7"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/certificates/u/c.pdf", url)

	data, err := m.Get(ctx, "certificates/u/c.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	require.NoError(t, m.Delete(ctx, "certificates/u/c.pdf"))
	_, err = m.Get(ctx, "certificates/u/c.pdf")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestS3Store_PresignAndURL(t *testing.T) {
	store, err := NewS3(context.Background(), config.StorageConfig{
		Bucket:          "certs",
		Region:          "auto",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/certs/certificates/u/c.pdf", store.URL("certificates/u/c.pdf"))

	presigned, err := store.Presign(context.Background(), http.MethodPut, "certificates/u/c.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, presigned.Method)
	assert.True(t, strings.HasPrefix(presigned.URL, "http://localhost:9000/certs/certificates/u/c.pdf?"))
	assert.Contains(t, presigned.URL, "X-Amz-Signature=")
	assert.False(t, presigned.ExpiresAt.IsZero())

	_, err = store.Presign(context.Background(), http.MethodPost, "k", "")
	assert.Error(t, err)
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), config.StorageConfig{Region: "us-east-1"})
	assert.Error(t, err)
}

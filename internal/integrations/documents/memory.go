package documents

import (
	"context"
	"strings"
	"sync"
	"time"

	"certifly/internal/certificate/ports"
	"certifly/pkg/platform/sentinel"
)

// MemoryStore keeps documents in process. Presigned URLs point at the public
// base URL with a fake signature and are only meaningful in development.
type MemoryStore struct {
	mu            sync.RWMutex
	objects       map[string][]byte
	publicBaseURL string
	presignTTL    time.Duration
}

func NewMemory(publicBaseURL string) *MemoryStore {
	if publicBaseURL == "" {
		publicBaseURL = "memory://documents"
	}
	return &MemoryStore{
		objects:       make(map[string][]byte),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		presignTTL:    defaultPresignTTL,
	}
}

func (m *MemoryStore) URL(key string) string {
	return m.publicBaseURL + "/" + key
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return m.URL(key), nil
}

func (m *MemoryStore) Presign(_ context.Context, method, key, _ string) (*ports.PresignedURL, error) {
	expiresAt := time.Now().Add(m.presignTTL)
	return &ports.PresignedURL{
		URL:       m.URL(key) + "?X-Presign-Method=" + method + "&X-Presign-Expires=" + expiresAt.UTC().Format(time.RFC3339),
		Method:    method,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Has reports whether key holds a document.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

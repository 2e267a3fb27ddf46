package verificationlog

import (
	"context"
	"encoding/json"
	"sync"

	"certifly/internal/certificate/models"
	id "certifly/pkg/domain"
)

// InMemoryStore is an append-only verification log kept in process.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.CertificateID][]*models.LogEntry
}

func New() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.CertificateID][]*models.LogEntry)}
}

func (s *InMemoryStore) Append(_ context.Context, entry *models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.CertificateID] = append(s.entries[entry.CertificateID], clone(entry))
	return nil
}

// ListByCertificate returns entries in append order.
func (s *InMemoryStore) ListByCertificate(_ context.Context, certID id.CertificateID) ([]*models.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.LogEntry, 0, len(s.entries[certID]))
	for _, e := range s.entries[certID] {
		out = append(out, clone(e))
	}
	return out, nil
}

// LatestByCertificates returns the most recent entry for each certificate that has one.
func (s *InMemoryStore) LatestByCertificates(_ context.Context, certIDs []id.CertificateID) (map[id.CertificateID]*models.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.CertificateID]*models.LogEntry, len(certIDs))
	for _, certID := range certIDs {
		entries := s.entries[certID]
		if len(entries) > 0 {
			out[certID] = clone(entries[len(entries)-1])
		}
	}
	return out, nil
}

// DeleteByCertificate drops a certificate's history along with the certificate.
func (s *InMemoryStore) DeleteByCertificate(_ context.Context, certID id.CertificateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, certID)
	return nil
}

func clone(e *models.LogEntry) *models.LogEntry {
	out := *e
	if e.Details != nil {
		out.Details = append(json.RawMessage(nil), e.Details...)
	}
	return &out
}

package certificate

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"certifly/internal/certificate/models"
	id "certifly/pkg/domain"
	"certifly/pkg/platform/sentinel"
)

// InMemoryStore keeps certificates in process. Every conditional update runs
// under the store mutex so the check and the write are one step.
type InMemoryStore struct {
	mu    sync.RWMutex
	certs map[id.CertificateID]*models.Certificate
}

func New() *InMemoryStore {
	return &InMemoryStore{certs: make(map[id.CertificateID]*models.Certificate)}
}

func (s *InMemoryStore) Create(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.certs[cert.ID]; ok {
		return sentinel.ErrConflict
	}
	s.certs[cert.ID] = cert.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, certID id.CertificateID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.certs[certID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// FindByIDAndUser returns ErrNotFound for certificates owned by someone else.
func (s *InMemoryStore) FindByIDAndUser(_ context.Context, certID id.CertificateID, userID id.UserID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.certs[certID]
	if !ok || c.UserID != userID {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// ListByUser returns the user's certificates, newest first.
func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Certificate, 0)
	for _, c := range s.certs {
		if c.UserID == userID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes the certificate and returns the deleted record.
func (s *InMemoryStore) Delete(_ context.Context, certID id.CertificateID, userID id.UserID) (*models.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.certs[certID]
	if !ok || c.UserID != userID {
		return nil, sentinel.ErrNotFound
	}
	delete(s.certs, certID)
	return c, nil
}

// CompareAndSetVerification moves the status from expect to status. applied
// is false when the stored status was no longer expect.
func (s *InMemoryStore) CompareAndSetVerification(_ context.Context, certID id.CertificateID, expect, status models.Status, details json.RawMessage, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.certs[certID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if c.Status != expect {
		return false, nil
	}
	c.Status = status
	c.VerificationDetails = append(json.RawMessage(nil), details...)
	c.UpdatedAt = now
	return true, nil
}

// SetLedgerAddressIfEmpty records address unless one is already stored.
func (s *InMemoryStore) SetLedgerAddressIfEmpty(_ context.Context, certID id.CertificateID, address string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.certs[certID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if c.LedgerAddress != nil {
		return false, nil
	}
	c.LedgerAddress = &address
	c.UpdatedAt = now
	return true, nil
}

// SetMintIDIfEmpty records mintID if none is stored and the certificate is verified.
func (s *InMemoryStore) SetMintIDIfEmpty(_ context.Context, certID id.CertificateID, mintID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.certs[certID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if c.MintID != nil || c.Status != models.StatusVerified {
		return false, nil
	}
	c.MintID = &mintID
	c.UpdatedAt = now
	return true, nil
}

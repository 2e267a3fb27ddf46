package user

import (
	"context"
	"sync"

	"certifly/internal/auth/models"
	id "certifly/pkg/domain"
	"certifly/pkg/platform/sentinel"
)

// InMemoryUserStore keeps users in process. Guarded by a single mutex so the
// wallet uniqueness check and the insert are one atomic step.
type InMemoryUserStore struct {
	mu       sync.RWMutex
	users    map[id.UserID]*models.User
	byWallet map[id.WalletAddress]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:    make(map[id.UserID]*models.User),
		byWallet: make(map[id.WalletAddress]id.UserID),
	}
}

// FindOrCreateByWallet returns the user bound to candidate's wallet, inserting
// candidate when none exists. created reports whether the insert happened.
func (s *InMemoryUserStore) FindOrCreateByWallet(_ context.Context, candidate *models.User) (*models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.byWallet[candidate.WalletAddress]; ok {
		return clone(s.users[existingID]), false, nil
	}
	if _, ok := s.users[candidate.ID]; ok {
		return nil, false, sentinel.ErrConflict
	}
	stored := clone(candidate)
	s.users[stored.ID] = stored
	s.byWallet[stored.WalletAddress] = stored.ID
	return clone(stored), true, nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(u), nil
}

func (s *InMemoryUserStore) FindByWallet(_ context.Context, wallet id.WalletAddress) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byWallet[wallet]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.users[userID]), nil
}

// UpdateProfile persists display name and email. Wallet and creation time are immutable.
func (s *InMemoryUserStore) UpdateProfile(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	existing.DisplayName = user.DisplayName
	existing.Email = cloneString(user.Email)
	existing.UpdatedAt = user.UpdatedAt
	return nil
}

func clone(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Email = cloneString(u.Email)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

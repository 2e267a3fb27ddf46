package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"certifly/internal/auth/models"
	id "certifly/pkg/domain"
	"certifly/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = New()
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func newCandidate(wallet string) *models.User {
	return models.NewUser(id.UserID(uuid.New()), id.WalletAddress(wallet), time.Now())
}

// TestFindOrCreate tests first-contact creation and idempotent re-login.
func (s *InMemoryUserStoreSuite) TestFindOrCreate() {
	ctx := context.Background()

	s.Run("creates user on first contact", func() {
		candidate := newCandidate("wallet-first")
		user, created, err := s.store.FindOrCreateByWallet(ctx, candidate)
		s.Require().NoError(err)
		s.True(created)
		s.Equal(candidate.ID, user.ID)
		s.Equal(models.DefaultDisplayName(candidate.ID), user.DisplayName)
	})

	s.Run("returns existing user for known wallet", func() {
		first, _, err := s.store.FindOrCreateByWallet(ctx, newCandidate("wallet-again"))
		s.Require().NoError(err)

		second, created, err := s.store.FindOrCreateByWallet(ctx, newCandidate("wallet-again"))
		s.Require().NoError(err)
		s.False(created)
		s.Equal(first.ID, second.ID)
	})

	s.Run("concurrent first contact yields exactly one user", func() {
		const workers = 32
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			ids     = map[id.UserID]struct{}{}
			creates int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				u, created, err := s.store.FindOrCreateByWallet(ctx, newCandidate("wallet-race"))
				s.NoError(err)
				mu.Lock()
				defer mu.Unlock()
				ids[u.ID] = struct{}{}
				if created {
					creates++
				}
			}()
		}
		wg.Wait()
		s.Len(ids, 1)
		s.Equal(1, creates)
	})
}

// TestLookupBehavior tests user retrieval by ID and wallet.
func (s *InMemoryUserStoreSuite) TestLookupBehavior() {
	ctx := context.Background()
	user, _, err := s.store.FindOrCreateByWallet(ctx, newCandidate("wallet-lookup"))
	s.Require().NoError(err)

	s.Run("returns user by ID when exists", func() {
		found, err := s.store.FindByID(ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("returns user by wallet when exists", func() {
		found, err := s.store.FindByWallet(ctx, user.WalletAddress)
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("returns ErrNotFound when user ID does not exist", func() {
		_, err := s.store.FindByID(ctx, id.UserID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when wallet does not exist", func() {
		_, err := s.store.FindByWallet(ctx, "missing-wallet")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned users are copies", func() {
		found, err := s.store.FindByID(ctx, user.ID)
		s.Require().NoError(err)
		found.DisplayName = "mutated"

		again, err := s.store.FindByID(ctx, user.ID)
		s.Require().NoError(err)
		s.NotEqual("mutated", again.DisplayName)
	})
}

func (s *InMemoryUserStoreSuite) TestUpdateProfile() {
	ctx := context.Background()
	user, _, err := s.store.FindOrCreateByWallet(ctx, newCandidate("wallet-profile"))
	s.Require().NoError(err)

	s.Run("persists name and email", func() {
		email := "ada@example.com"
		user.DisplayName = "Ada"
		user.Email = &email
		s.Require().NoError(s.store.UpdateProfile(ctx, user))

		found, err := s.store.FindByID(ctx, user.ID)
		s.Require().NoError(err)
		s.Equal("Ada", found.DisplayName)
		s.Require().NotNil(found.Email)
		s.Equal(email, *found.Email)
		s.Equal(user.WalletAddress, found.WalletAddress)
	})

	s.Run("returns ErrNotFound for unknown user", func() {
		err := s.store.UpdateProfile(ctx, newCandidate("nobody"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

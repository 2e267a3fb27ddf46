package certificate

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"certifly/internal/certificate/models"
	id "certifly/pkg/domain"
	"certifly/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newCert(userID id.UserID, createdAt time.Time) *models.Certificate {
	certID := id.CertificateID(uuid.New())
	c := &models.Certificate{
		ID:              certID,
		UserID:          userID,
		Title:           "BSc Computer Science",
		InstitutionName: "University of Edinburgh",
		ProgramName:     "Informatics",
		IssueDate:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		DocumentKey:     models.DocumentKey(userID, certID),
		Status:          models.StatusPending,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	s.Require().NoError(s.store.Create(s.ctx, c))
	return c
}

func (s *InMemoryStoreSuite) TestOwnershipScopedLookup() {
	owner := id.UserID(uuid.New())
	c := s.newCert(owner, s.now)

	got, err := s.store.FindByIDAndUser(s.ctx, c.ID, owner)
	s.Require().NoError(err)
	s.Equal(c.Title, got.Title)

	_, err = s.store.FindByIDAndUser(s.ctx, c.ID, id.UserID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListNewestFirst() {
	owner := id.UserID(uuid.New())
	older := s.newCert(owner, s.now.Add(-time.Hour))
	newer := s.newCert(owner, s.now)
	s.newCert(id.UserID(uuid.New()), s.now)

	list, err := s.store.ListByUser(s.ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
}

func (s *InMemoryStoreSuite) TestReturnedRecordsAreCopies() {
	owner := id.UserID(uuid.New())
	c := s.newCert(owner, s.now)

	got, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	got.Status = models.StatusVerified

	again, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, again.Status)
}

func (s *InMemoryStoreSuite) TestCompareAndSetVerification() {
	c := s.newCert(id.UserID(uuid.New()), s.now)
	details := json.RawMessage(`{"score":0.98}`)

	applied, err := s.store.CompareAndSetVerification(s.ctx, c.ID, models.StatusPending, models.StatusVerified, details, s.now)
	s.Require().NoError(err)
	s.True(applied)

	applied, err = s.store.CompareAndSetVerification(s.ctx, c.ID, models.StatusPending, models.StatusRejected, nil, s.now)
	s.Require().NoError(err)
	s.False(applied, "terminal status is never left")

	got, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, got.Status)
	s.JSONEq(`{"score":0.98}`, string(got.VerificationDetails))

	_, err = s.store.CompareAndSetVerification(s.ctx, id.CertificateID(uuid.New()), models.StatusPending, models.StatusVerified, nil, s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestConcurrentCompareAndSet_OneWinner() {
	c := s.newCert(id.UserID(uuid.New()), s.now)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := models.StatusVerified
			if i%2 == 1 {
				status = models.StatusRejected
			}
			applied, err := s.store.CompareAndSetVerification(s.ctx, c.ID, models.StatusPending, status, nil, s.now)
			s.NoError(err)
			if applied {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())
}

func (s *InMemoryStoreSuite) TestLedgerAddressIsWriteOnce() {
	c := s.newCert(id.UserID(uuid.New()), s.now)

	applied, err := s.store.SetLedgerAddressIfEmpty(s.ctx, c.ID, "ledger://first", s.now)
	s.Require().NoError(err)
	s.True(applied)

	applied, err = s.store.SetLedgerAddressIfEmpty(s.ctx, c.ID, "ledger://second", s.now)
	s.Require().NoError(err)
	s.False(applied)

	got, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("ledger://first", *got.LedgerAddress)
}

func (s *InMemoryStoreSuite) TestMintIDRequiresVerified() {
	c := s.newCert(id.UserID(uuid.New()), s.now)

	applied, err := s.store.SetMintIDIfEmpty(s.ctx, c.ID, "mint-1", s.now)
	s.Require().NoError(err)
	s.False(applied, "pending certificates cannot carry a mint id")

	_, err = s.store.CompareAndSetVerification(s.ctx, c.ID, models.StatusPending, models.StatusVerified, nil, s.now)
	s.Require().NoError(err)

	applied, err = s.store.SetMintIDIfEmpty(s.ctx, c.ID, "mint-1", s.now)
	s.Require().NoError(err)
	s.True(applied)

	applied, err = s.store.SetMintIDIfEmpty(s.ctx, c.ID, "mint-2", s.now)
	s.Require().NoError(err)
	s.False(applied)
}

func (s *InMemoryStoreSuite) TestDelete() {
	owner := id.UserID(uuid.New())
	c := s.newCert(owner, s.now)

	_, err := s.store.Delete(s.ctx, c.ID, id.UserID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)

	deleted, err := s.store.Delete(s.ctx, c.ID, owner)
	s.Require().NoError(err)
	s.Equal(c.DocumentKey, deleted.DocumentKey)

	_, err = s.store.FindByID(s.ctx, c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

package auditlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certifly/internal/certificate/models"
	"certifly/internal/certificate/store/verificationlog"
	id "certifly/pkg/domain"
	"certifly/pkg/platform/audit"
	"certifly/pkg/platform/audit/publisher"
	"certifly/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, *models.LogEntry) error {
	return errors.New("disk full")
}

func TestRecorder_WritesStoreAndAuditStream(t *testing.T) {
	ctx := context.Background()
	logs := verificationlog.New()
	events := memory.NewInMemoryStore()
	rec := New(logs, WithEmitter(publisher.NewPublisher(events)))

	userID := id.UserID(uuid.New())
	certID := id.CertificateID(uuid.New())
	entry := models.NewLogEntry(certID, models.StepNFTMinting, models.LogStatusSuccess, nil, time.Now())
	rec.Record(ctx, userID, entry)

	stored, err := logs.ListByCertificate(ctx, certID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	emitted, err := events.ListBySubject(ctx, certID.String())
	require.NoError(t, err)
	require.Len(t, emitted, 1)
	assert.Equal(t, string(audit.EventMintRecorded), emitted[0].Action)
	assert.Equal(t, userID, emitted[0].UserID)
	assert.Equal(t, models.LogStatusSuccess, emitted[0].Status)
}

func TestRecorder_StoreFailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	events := memory.NewInMemoryStore()
	rec := New(failingStore{}, WithEmitter(publisher.NewPublisher(events)), WithLogger(logger))

	certID := id.CertificateID(uuid.New())
	rec.Record(context.Background(), id.UserID(uuid.New()),
		models.NewErrorLogEntry(certID, models.StepExternalVerification, errors.New("oracle down"), time.Now()))

	assert.Contains(t, buf.String(), "failed to write verification log")
	assert.Contains(t, buf.String(), "disk full")

	emitted, err := events.ListBySubject(context.Background(), certID.String())
	require.NoError(t, err)
	assert.Len(t, emitted, 1, "audit stream still receives the entry")
}

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, audit.Event) error {
	return errors.New("broker unavailable")
}

func TestRecorder_EmitFailureKeepsTheLogEntry(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	logs := verificationlog.New()
	rec := New(logs, WithEmitter(failingEmitter{}), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	certID := id.CertificateID(uuid.New())
	rec.Record(ctx, id.UserID(uuid.New()),
		models.NewLogEntry(certID, models.StepExternalVerification, "verified", nil, time.Now()))

	stored, err := logs.ListByCertificate(ctx, certID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Contains(t, buf.String(), "failed to emit verification audit event")
	assert.Contains(t, buf.String(), "broker unavailable")
}

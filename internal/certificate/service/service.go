package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks CertificateStore,LogStore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"certifly/internal/certificate/auditlog"
	"certifly/internal/certificate/metrics"
	"certifly/internal/certificate/models"
	"certifly/internal/certificate/ports"
	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
	"certifly/pkg/platform/audit"
	"certifly/pkg/platform/sentinel"
	"certifly/pkg/requestcontext"
)

var tracer = otel.Tracer("certificate")

type CertificateStore interface {
	Create(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)
	FindByIDAndUser(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Certificate, error)
	Delete(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.Certificate, error)
	CompareAndSetVerification(ctx context.Context, certID id.CertificateID, expect, status models.Status, details json.RawMessage, now time.Time) (bool, error)
	SetLedgerAddressIfEmpty(ctx context.Context, certID id.CertificateID, address string, now time.Time) (bool, error)
	SetMintIDIfEmpty(ctx context.Context, certID id.CertificateID, mintID string, now time.Time) (bool, error)
}

type LogStore interface {
	Append(ctx context.Context, entry *models.LogEntry) error
	ListByCertificate(ctx context.Context, certID id.CertificateID) ([]*models.LogEntry, error)
	LatestByCertificates(ctx context.Context, certIDs []id.CertificateID) (map[id.CertificateID]*models.LogEntry, error)
	DeleteByCertificate(ctx context.Context, certID id.CertificateID) error
}

// Transactor runs fn so that every store call made with the ctx it receives
// commits or rolls back together.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noTx struct{}

func (noTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Config holds the coordinators' tunables.
type Config struct {
	PublicVerifyBaseURL string
	MaxDocumentBytes    int64
	OracleTimeout       time.Duration
	LedgerTimeout       time.Duration
	MinterTimeout       time.Duration
}

// Service runs certificate submission, verification and minting.
type Service struct {
	certs     CertificateStore
	logs      LogStore
	recorder  *auditlog.Recorder
	documents ports.DocumentStore
	oracle    ports.Oracle
	ledger    ports.LedgerUploader
	minter    ports.Minter
	users     ports.UserLookup
	tx        Transactor
	audit     audit.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cfg       Config
	mintLocks *keyLock
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(emitter audit.Emitter) Option {
	return func(s *Service) {
		s.audit = emitter
	}
}

func WithDocumentStore(documents ports.DocumentStore) Option {
	return func(s *Service) {
		s.documents = documents
	}
}

func WithOracle(oracle ports.Oracle) Option {
	return func(s *Service) {
		s.oracle = oracle
	}
}

func WithLedger(ledger ports.LedgerUploader) Option {
	return func(s *Service) {
		s.ledger = ledger
	}
}

func WithMinter(minter ports.Minter) Option {
	return func(s *Service) {
		s.minter = minter
	}
}

func WithUserLookup(users ports.UserLookup) Option {
	return func(s *Service) {
		s.users = users
	}
}

// WithTransactor makes deletions atomic across the certificate and log stores.
func WithTransactor(tx Transactor) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

func New(certs CertificateStore, logs LogStore, cfg Config, opts ...Option) (*Service, error) {
	s := &Service{
		certs:     certs,
		logs:      logs,
		cfg:       cfg,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tx:        noTx{},
		mintLocks: newKeyLock(),
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case s.certs == nil:
		return nil, errors.New("certificate store is required")
	case s.logs == nil:
		return nil, errors.New("verification log store is required")
	case s.documents == nil:
		return nil, errors.New("document store is required")
	case s.oracle == nil:
		return nil, errors.New("verification oracle is required")
	case s.ledger == nil:
		return nil, errors.New("ledger uploader is required")
	case s.minter == nil:
		return nil, errors.New("minter is required")
	case s.users == nil:
		return nil, errors.New("user lookup is required")
	}

	s.cfg.PublicVerifyBaseURL = strings.TrimRight(s.cfg.PublicVerifyBaseURL, "/")
	s.recorder = auditlog.New(logs, auditlog.WithEmitter(s.audit), auditlog.WithLogger(s.logger))
	return s, nil
}

// loadOwned returns the certificate only when userID owns it. Foreign
// certificates are indistinguishable from missing ones.
func (s *Service) loadOwned(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.Certificate, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	cert, err := s.certs.FindByIDAndUser(ctx, certID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}
	return cert, nil
}

func (s *Service) reload(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	cert, err := s.certs.FindByID(ctx, certID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}
	return cert, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, userID id.UserID, certID id.CertificateID) {
	s.logger.InfoContext(ctx, string(event),
		"user_id", userID.String(),
		"certificate_id", certID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   certID.String(),
		Action:    string(event),
		RequestID: requestcontext.RequestID(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

// upstreamFailure converts a collaborator error into CodeUpstream, keeping the
// collaborator's own message when it has one.
func upstreamFailure(err error, msg string) error {
	var ue *ports.UpstreamError
	if errors.As(err, &ue) && ue.Message != "" {
		msg = msg + ": " + ue.Message
	}
	return dErrors.Wrap(err, dErrors.CodeUpstream, msg)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

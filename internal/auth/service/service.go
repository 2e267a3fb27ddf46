package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,TokenIssuer,RevocationList,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"certifly/internal/auth/models"
	jwttoken "certifly/internal/jwt_token"
	"certifly/internal/platform/metrics"
	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
	"certifly/pkg/platform/audit"
	"certifly/pkg/platform/sentinel"
	"certifly/pkg/requestcontext"
)

// DefaultSessionTTL is the lifetime of a session credential.
const DefaultSessionTTL = 7 * 24 * time.Hour

type UserStore interface {
	FindOrCreateByWallet(ctx context.Context, candidate *models.User) (*models.User, bool, error)
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

type TokenIssuer interface {
	GenerateSessionToken(userID id.UserID, wallet id.WalletAddress, expiresIn time.Duration) (*jwttoken.SessionToken, error)
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

// RevocationList tracks credentials revoked before their expiry.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// SignatureVerifier checks an Ed25519 signature over message.
type SignatureVerifier interface {
	Verify(message []byte, signature, publicKey string) bool
}

// Service binds wallet signatures to user records and issues session credentials.
type Service struct {
	users      UserStore
	tokens     TokenIssuer
	verifier   SignatureVerifier
	trl        RevocationList
	logger     *slog.Logger
	audit      AuditPublisher
	metrics    *metrics.Metrics
	sessionTTL time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithRevocationList(trl RevocationList) Option {
	return func(s *Service) {
		s.trl = trl
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func New(users UserStore, tokens TokenIssuer, verifier SignatureVerifier, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("users store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if verifier == nil {
		return nil, errors.New("signature verifier is required")
	}
	s := &Service{
		users:      users,
		tokens:     tokens,
		verifier:   verifier,
		sessionTTL: DefaultSessionTTL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authenticate proves wallet ownership through a signed message, creates the
// user on first contact and issues a session credential.
func (s *Service) Authenticate(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	if req.Message == "" || req.Signature == "" || req.PublicKey == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "message, signature and public key are required")
	}

	if !s.verifier.Verify([]byte(req.Message), req.Signature, req.PublicKey) {
		s.metrics.ObserveLogin("invalid_signature")
		s.authFailure(ctx, "invalid_signature", "public_key", req.PublicKey)
		return nil, dErrors.WithReason(dErrors.CodeUnauthorized, dErrors.ReasonInvalidSignature, "invalid signature")
	}

	wallet, err := id.ParseWalletAddress(req.PublicKey)
	if err != nil {
		s.metrics.ObserveLogin("invalid_signature")
		return nil, dErrors.WithReason(dErrors.CodeUnauthorized, dErrors.ReasonInvalidSignature, "invalid public key")
	}

	now := requestcontext.Now(ctx)
	user, created, err := s.users.FindOrCreateByWallet(ctx, models.NewUser(id.UserID(uuid.New()), wallet, now))
	if err != nil {
		s.metrics.ObserveLogin("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user")
	}
	if created {
		s.metrics.IncrementUsersCreated()
		s.logAudit(ctx, audit.EventUserCreated, user.ID, "wallet_address", wallet.String())
	}

	session, err := s.tokens.GenerateSessionToken(user.ID, user.WalletAddress, s.sessionTTL)
	if err != nil {
		s.metrics.ObserveLogin("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.metrics.ObserveLogin("success")
	s.logAudit(ctx, audit.EventLoginSucceeded, user.ID, "wallet_address", wallet.String())

	return &models.LoginResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
		Created:   created,
	}, nil
}

// ValidateToken checks a session credential without touching storage.
func (s *Service) ValidateToken(tokenString string) (*jwttoken.Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// IsTokenRevoked reports whether the credential was revoked by logout.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if s.trl == nil || jti == "" {
		return false, nil
	}
	return s.trl.IsRevoked(ctx, jti)
}

// Me returns the authenticated user's record.
func (s *Service) Me(ctx context.Context, userID id.UserID) (*models.User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// UpdateProfile changes display name and/or email.
func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, update models.ProfileUpdate) (*models.User, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	update.Apply(user, requestcontext.Now(ctx))
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}

	s.logAudit(ctx, audit.EventProfileUpdated, user.ID)
	return user, nil
}

// Logout revokes the credential identified by jti until it would have expired.
func (s *Service) Logout(ctx context.Context, userID id.UserID, jti string, expiresAt time.Time) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeBadRequest, "token ID required")
	}
	if s.trl == nil {
		return nil
	}
	ttl := expiresAt.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.logAudit(ctx, audit.EventLoggedOut, userID, "jti", jti)
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, userID id.UserID, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	args := append(attributes, "user_id", userID.String(), "request_id", requestID, "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   userID.String(),
		Action:    string(event),
		RequestID: requestID,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func (s *Service) authFailure(ctx context.Context, reason string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	args := append(attributes, "reason", reason, "request_id", requestID, "log_type", "security")
	s.logger.WarnContext(ctx, "auth failure", args...)
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		Action:    string(audit.EventAuthFailed),
		Reason:    reason,
		RequestID: requestID,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(audit.EventAuthFailed), "error", err)
	}
}

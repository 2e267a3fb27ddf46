// Package auditlog writes verification log entries and mirrors them onto the
// audit stream. A failed write is logged and never surfaces to the caller.
package auditlog

import (
	"context"
	"io"
	"log/slog"

	"certifly/internal/certificate/models"
	id "certifly/pkg/domain"
	"certifly/pkg/platform/audit"
	"certifly/pkg/requestcontext"
)

// Store persists log entries.
type Store interface {
	Append(ctx context.Context, entry *models.LogEntry) error
}

// Recorder appends verification log entries.
type Recorder struct {
	store   Store
	emitter audit.Emitter
	logger  *slog.Logger
}

type Option func(*Recorder)

func WithEmitter(emitter audit.Emitter) Option {
	return func(r *Recorder) {
		r.emitter = emitter
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends entry for a certificate owned by userID.
func (r *Recorder) Record(ctx context.Context, userID id.UserID, entry *models.LogEntry) {
	if err := r.store.Append(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "failed to write verification log",
			"error", err,
			"certificate_id", entry.CertificateID.String(),
			"step", string(entry.Step),
			"status", entry.Status,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if r.emitter == nil {
		return
	}
	if err := r.emitter.Emit(ctx, audit.Event{
		Timestamp: entry.CreatedAt,
		UserID:    userID,
		Subject:   entry.CertificateID.String(),
		Action:    string(actionFor(entry.Step)),
		Status:    entry.Status,
		Details:   entry.Details,
		RequestID: requestcontext.RequestID(ctx),
	}); err != nil {
		r.logger.WarnContext(ctx, "failed to emit verification audit event",
			"error", err,
			"certificate_id", entry.CertificateID.String(),
		)
	}
}

func actionFor(step models.LogStep) audit.AuditEvent {
	if step == models.StepNFTMinting {
		return audit.EventMintRecorded
	}
	return audit.EventVerificationRecorded
}

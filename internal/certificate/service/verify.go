package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"certifly/internal/certificate/models"
	"certifly/internal/certificate/ports"
	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
	"certifly/pkg/requestcontext"
)

// RequestVerification asks the oracle to judge a pending certificate and
// records its verdict. Certificates that already have a verdict are returned
// as-is without contacting the oracle.
func (s *Service) RequestVerification(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.VerificationOutcome, error) {
	ctx, span := tracer.Start(ctx, "Certificate.Service.RequestVerification")
	defer span.End()
	span.SetAttributes(attribute.String("certificate.id", certID.String()))

	cert, err := s.loadOwned(ctx, certID, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if cert.Status != models.StatusPending {
		s.metrics.IncVerification("already_in_state")
		return alreadyVerified(cert), nil
	}

	verdict, err := s.callOracle(ctx, certID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "oracle call failed")
		s.metrics.IncVerification("upstream_error")
		s.recorder.Record(ctx, userID, models.NewErrorLogEntry(certID, models.StepExternalVerification, err, requestcontext.Now(ctx)))
		s.logger.WarnContext(ctx, "verification oracle call failed",
			"error", err,
			"certificate_id", certID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, upstreamFailure(err, "verification service failed")
	}

	now := requestcontext.Now(ctx)
	status, ok := models.ParseVerdict(verdict.Status)
	if !ok {
		s.metrics.IncVerification("upstream_error")
		s.recorder.Record(ctx, userID, models.NewLogEntry(certID, models.StepExternalVerification, verdict.Status, verdict.Details, now))
		return nil, dErrors.Newf(dErrors.CodeUpstream, "verification service returned unknown status %q", verdict.Status)
	}

	applied, err := s.certs.CompareAndSetVerification(ctx, certID, models.StatusPending, status, verdict.Details, now)
	if err != nil {
		// The verdict was never applied, so the single entry for this call reports the failure.
		s.recorder.Record(ctx, userID, models.NewErrorLogEntry(certID, models.StepExternalVerification, err, now))
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification result")
	}
	s.recorder.Record(ctx, userID, models.NewLogEntry(certID, models.StepExternalVerification, status.String(), verdict.Details, now))

	if !applied {
		current, err := s.reload(ctx, certID)
		if err != nil {
			return nil, err
		}
		s.metrics.IncVerification("already_in_state")
		s.logger.InfoContext(ctx, "verification raced with another request",
			"certificate_id", certID.String(),
			"status", current.Status.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return alreadyVerified(current), nil
	}

	s.metrics.IncVerification(status.String())
	span.SetAttributes(attribute.String("certificate.status", status.String()))
	s.logger.InfoContext(ctx, "certificate verification recorded",
		"certificate_id", certID.String(),
		"user_id", userID.String(),
		"status", status.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.VerificationOutcome{
		CertificateID: certID,
		Status:        status,
		Details:       verdict.Details,
		Outcome:       models.OutcomeTransitioned,
	}, nil
}

// GetVerification returns the stored status without contacting the oracle.
func (s *Service) GetVerification(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.VerificationOutcome, error) {
	cert, err := s.loadOwned(ctx, certID, userID)
	if err != nil {
		return nil, err
	}
	return &models.VerificationOutcome{
		CertificateID: cert.ID,
		Status:        cert.Status,
		Details:       cert.VerificationDetails,
		Outcome:       models.OutcomeAlreadyInState,
	}, nil
}

func (s *Service) callOracle(ctx context.Context, certID id.CertificateID, userID id.UserID) (*ports.Verdict, error) {
	callCtx, cancel := withTimeout(ctx, s.cfg.OracleTimeout)
	defer cancel()

	start := time.Now()
	verdict, err := s.oracle.Verify(callCtx, userID, certID)
	s.metrics.ObserveUpstream("oracle", start, err)
	if err == nil && verdict == nil {
		err = ports.NewUpstreamError(ports.ErrorBadData, "oracle", "empty verdict", nil)
	}
	return verdict, err
}

func alreadyVerified(cert *models.Certificate) *models.VerificationOutcome {
	return &models.VerificationOutcome{
		CertificateID: cert.ID,
		Status:        cert.Status,
		Details:       cert.VerificationDetails,
		Outcome:       models.OutcomeAlreadyInState,
	}
}

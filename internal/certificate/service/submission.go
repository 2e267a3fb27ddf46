package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"certifly/internal/certificate/models"
	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
	"certifly/pkg/platform/audit"
	"certifly/pkg/platform/sentinel"
	"certifly/pkg/requestcontext"
)

// Submit creates a pending certificate. With RequestUploadURL the client gets a
// presigned URL to upload the document itself; otherwise Document must hold
// the PDF bytes, which are stored before the record is created.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error) {
	if req.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	issueDate, err := req.ParsedIssueDate()
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	certID := id.CertificateID(uuid.New())
	key := models.DocumentKey(req.UserID, certID)
	cert := &models.Certificate{
		ID:              certID,
		UserID:          req.UserID,
		Title:           req.Title,
		InstitutionName: req.InstitutionName,
		ProgramName:     req.ProgramName,
		IssueDate:       issueDate,
		DocumentKey:     key,
		VerificationURL: s.cfg.PublicVerifyBaseURL + "/" + certID.String(),
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	result := &models.SubmitResult{Certificate: cert}

	mode := "direct"
	if req.RequestUploadURL {
		mode = "presigned"
		presigned, err := s.documents.Presign(ctx, http.MethodPut, key, req.FileType)
		if err != nil {
			return nil, upstreamFailure(err, "failed to create upload URL")
		}
		cert.DocumentURL = s.documents.URL(key)
		result.UploadURL = presigned.URL
		result.UploadExpiresAt = presigned.ExpiresAt
	} else {
		if err := models.ValidateDocument(req.Document, s.cfg.MaxDocumentBytes); err != nil {
			return nil, err
		}
		url, err := s.documents.Put(ctx, key, req.Document, models.ContentTypePDF)
		if err != nil {
			return nil, upstreamFailure(err, "failed to store document")
		}
		cert.DocumentURL = url
	}

	if err := s.certs.Create(ctx, cert); err != nil {
		if !req.RequestUploadURL {
			s.deleteDocument(ctx, key)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create certificate")
	}

	s.metrics.IncSubmission(mode)
	s.emit(ctx, audit.EventCertificateSubmitted, req.UserID, certID)
	return result, nil
}

// List returns the user's certificates, newest first, each with its latest log entry.
func (s *Service) List(ctx context.Context, userID id.UserID) ([]*models.CertificateSummary, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	certs, err := s.certs.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	ids := make([]id.CertificateID, len(certs))
	for i, c := range certs {
		ids[i] = c.ID
	}
	latest, err := s.logs.LatestByCertificates(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification logs")
	}

	out := make([]*models.CertificateSummary, len(certs))
	for i, c := range certs {
		out[i] = &models.CertificateSummary{Certificate: c, LastLog: latest[c.ID]}
	}
	return out, nil
}

// Get returns one of the user's certificates with its full log.
func (s *Service) Get(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.CertificateDetails, error) {
	cert, err := s.loadOwned(ctx, certID, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByCertificate(ctx, certID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification logs")
	}
	return &models.CertificateDetails{Certificate: cert, Logs: logs}, nil
}

// Delete removes the user's certificate. The stored document is removed on a
// best-effort basis.
func (s *Service) Delete(ctx context.Context, certID id.CertificateID, userID id.UserID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	var deleted *models.Certificate
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.certs.Delete(ctx, certID, userID)
		if err != nil {
			return err
		}
		return s.logs.DeleteByCertificate(ctx, certID)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete certificate")
	}

	s.deleteDocument(ctx, deleted.DocumentKey)
	s.emit(ctx, audit.EventCertificateDeleted, userID, certID)
	return nil
}

func (s *Service) deleteDocument(ctx context.Context, key string) {
	if err := s.documents.Delete(ctx, key); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to delete document",
			"error", err,
			"document_key", key,
		)
	}
}

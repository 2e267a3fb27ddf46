package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certifly/internal/certificate/models"
	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
	"certifly/pkg/platform/httputil"
	request "certifly/pkg/platform/middleware/request"
	"certifly/pkg/requestcontext"
)

const alreadyVerifiedMessage = "certificate has already been verified or rejected"

// multipartOverhead is allowed on top of the document limit for form fields.
const multipartOverhead = 64 << 10

// Service is the certificate lifecycle exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error)
	List(ctx context.Context, userID id.UserID) ([]*models.CertificateSummary, error)
	Get(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.CertificateDetails, error)
	Delete(ctx context.Context, certID id.CertificateID, userID id.UserID) error
	RequestVerification(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.VerificationOutcome, error)
	GetVerification(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.VerificationOutcome, error)
	Mint(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.MintOutcome, error)
}

// Handler serves certificate submission, verification and minting.
type Handler struct {
	certs          Service
	logger         *slog.Logger
	maxUploadBytes int64
}

func New(certs Service, logger *slog.Logger, maxDocumentBytes int64) *Handler {
	return &Handler{
		certs:          certs,
		logger:         logger,
		maxUploadBytes: maxDocumentBytes + multipartOverhead,
	}
}

// Register mounts routes that expect RequireAuth upstream.
func (h *Handler) Register(r chi.Router) {
	r.Get("/certificates", h.HandleList)
	r.Post("/certificates", h.HandleCreate)
	r.Get("/certificates/{id}", h.HandleGet)
	r.Delete("/certificates/{id}", h.HandleDelete)
	r.Get("/verify/{id}", h.HandleGetVerification)
	r.Post("/verify/{id}", h.HandleVerify)
	r.Post("/mint/{id}", h.HandleMint)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	var submit models.SubmitRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req, err := h.decodeMultipart(w, r)
		if err != nil {
			h.logger.WarnContext(ctx, "failed to decode upload",
				"error", err,
				"request_id", requestID,
			)
			httputil.WriteError(w, err)
			return
		}
		submit = *req
	} else {
		req, ok := httputil.DecodeAndPrepare[CreateCertificateRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		submit = req.toModel()
	}
	submit.UserID = userID

	result, err := h.certs.Submit(ctx, submit)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create certificate",
			"error", err,
			"request_id", requestID,
			"user_id", userID.String(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := CreateCertificateResponse{
		ID:              result.Certificate.ID.String(),
		CertificateURL:  result.Certificate.DocumentURL,
		VerificationURL: result.Certificate.VerificationURL,
	}
	if result.UploadURL != "" {
		resp.UploadURL = result.UploadURL
		expiresAt := result.UploadExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// decodeMultipart reads metadata form fields and the "file" part.
func (h *Handler) decodeMultipart(w http.ResponseWriter, r *http.Request) (*models.SubmitRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeValidation, "document too large")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart payload")
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "file is required")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read file")
	}

	req := &models.SubmitRequest{
		Title:           r.FormValue("title"),
		InstitutionName: r.FormValue("institutionName"),
		ProgramName:     r.FormValue("programName"),
		IssueDate:       r.FormValue("issueDate"),
		FileName:        r.FormValue("fileName"),
		FileType:        r.FormValue("fileType"),
		Document:        data,
	}
	if req.FileName == "" {
		req.FileName = header.Filename
	}
	if req.FileType == "" {
		req.FileType = partContentType(header.Header.Get("Content-Type"), data)
	}
	return req, nil
}

// partContentType trusts the part header unless it is missing or generic, in
// which case the type is sniffed from the bytes. Submit still checks the PDF
// magic, so a sniffed type never bypasses validation.
func partContentType(declared string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err == nil && mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}
	sniffed, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return declared
	}
	return sniffed
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	summaries, err := h.certs.List(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list certificates",
			"error", err,
			"request_id", request.GetRequestID(ctx),
			"user_id", userID.String(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := ListCertificatesResponse{Certificates: make([]*CertificateResponse, 0, len(summaries))}
	for _, sum := range summaries {
		c := toCertificateResponse(sum.Certificate)
		c.LastLog = toLogEntryResponse(sum.LastLog)
		resp.Certificates = append(resp.Certificates, c)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, certID, ok := h.requireOwnerAndID(w, r)
	if !ok {
		return
	}

	details, err := h.certs.Get(ctx, certID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get certificate",
			"error", err,
			"request_id", request.GetRequestID(ctx),
			"certificate_id", certID.String(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := toCertificateResponse(details.Certificate)
	resp.Logs = make([]*LogEntryResponse, 0, len(details.Logs))
	for _, e := range details.Logs {
		resp.Logs = append(resp.Logs, toLogEntryResponse(e))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, certID, ok := h.requireOwnerAndID(w, r)
	if !ok {
		return
	}

	if err := h.certs.Delete(ctx, certID, userID); err != nil {
		h.logger.WarnContext(ctx, "failed to delete certificate",
			"error", err,
			"request_id", request.GetRequestID(ctx),
			"certificate_id", certID.String(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

func (h *Handler) HandleGetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, certID, ok := h.requireOwnerAndID(w, r)
	if !ok {
		return
	}

	out, err := h.certs.GetVerification(ctx, certID, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerificationResponse(out))
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, certID, ok := h.requireOwnerAndID(w, r)
	if !ok {
		return
	}

	out, err := h.certs.RequestVerification(ctx, certID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "verification failed",
			"error", err,
			"request_id", request.GetRequestID(ctx),
			"certificate_id", certID.String(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := toVerificationResponse(out)
	if out.Outcome == models.OutcomeAlreadyInState {
		resp.Message = alreadyVerifiedMessage
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, certID, ok := h.requireOwnerAndID(w, r)
	if !ok {
		return
	}

	out, err := h.certs.Mint(ctx, certID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "minting failed",
			"error", err,
			"request_id", request.GetRequestID(ctx),
			"certificate_id", certID.String(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MintResponse{
		ID:          out.CertificateID.String(),
		MintAddress: out.MintID,
		ArweaveURL:  out.LedgerAddress,
		Message:     out.Message,
	})
}

func (h *Handler) requireUserID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

// requireOwnerAndID resolves the caller and the {id} path parameter. A
// malformed id is reported as not found.
func (h *Handler) requireOwnerAndID(w http.ResponseWriter, r *http.Request) (id.UserID, id.CertificateID, bool) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return id.UserID{}, id.CertificateID{}, false
	}
	certID, err := id.ParseCertificateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "certificate not found"))
		return id.UserID{}, id.CertificateID{}, false
	}
	return userID, certID, true
}

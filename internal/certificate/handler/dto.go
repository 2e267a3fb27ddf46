package handler

import (
	"encoding/json"
	"strings"
	"time"

	"certifly/internal/certificate/models"
	dErrors "certifly/pkg/domain-errors"
)

// CreateCertificateRequest is the JSON body of POST /certificates. Direct
// uploads send the same fields as multipart form values plus a "file" part.
type CreateCertificateRequest struct {
	Title            string `json:"title"`
	InstitutionName  string `json:"institutionName"`
	ProgramName      string `json:"programName"`
	IssueDate        string `json:"issueDate"`
	FileName         string `json:"fileName"`
	FileType         string `json:"fileType"`
	RequestUploadURL bool   `json:"requestUploadUrl"`
}

func (r *CreateCertificateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.InstitutionName = strings.TrimSpace(r.InstitutionName)
	r.ProgramName = strings.TrimSpace(r.ProgramName)
	r.IssueDate = strings.TrimSpace(r.IssueDate)
	r.FileName = strings.TrimSpace(r.FileName)
	r.FileType = strings.TrimSpace(r.FileType)
}

// Validate only checks presence; field rules live in models.SubmitRequest.
func (r *CreateCertificateRequest) Validate() error {
	if r.Title == "" || r.InstitutionName == "" || r.ProgramName == "" || r.IssueDate == "" || r.FileName == "" || r.FileType == "" {
		return dErrors.New(dErrors.CodeValidation, "missing required fields: title, institutionName, programName, issueDate, fileName, fileType")
	}
	return nil
}

func (r *CreateCertificateRequest) toModel() models.SubmitRequest {
	return models.SubmitRequest{
		Title:            r.Title,
		InstitutionName:  r.InstitutionName,
		ProgramName:      r.ProgramName,
		IssueDate:        r.IssueDate,
		FileName:         r.FileName,
		FileType:         r.FileType,
		RequestUploadURL: r.RequestUploadURL,
	}
}

// CreateCertificateResponse carries uploadUrl/expiresAt only in presigned mode.
type CreateCertificateResponse struct {
	ID              string     `json:"id"`
	UploadURL       string     `json:"uploadUrl,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CertificateURL  string     `json:"certificateUrl"`
	VerificationURL string     `json:"verificationUrl"`
}

type CertificateResponse struct {
	ID                  string              `json:"id"`
	Title               string              `json:"title"`
	InstitutionName     string              `json:"institution_name"`
	ProgramName         string              `json:"program_name"`
	IssueDate           string              `json:"issue_date"`
	CertificateURL      string              `json:"certificate_url"`
	VerificationURL     string              `json:"verification_url"`
	VerificationStatus  string              `json:"verification_status"`
	VerificationDetails json.RawMessage     `json:"verification_details"`
	ArweaveURL          *string             `json:"arweave_url"`
	NFTMintAddress      *string             `json:"nft_mint_address"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	LastLog             *LogEntryResponse   `json:"last_log,omitempty"`
	Logs                []*LogEntryResponse `json:"logs,omitempty"`
}

type LogEntryResponse struct {
	ID               string          `json:"id"`
	VerificationStep string          `json:"verification_step"`
	Status           string          `json:"status"`
	Details          json.RawMessage `json:"details"`
	CreatedAt        time.Time       `json:"created_at"`
}

type ListCertificatesResponse struct {
	Certificates []*CertificateResponse `json:"certificates"`
}

type VerificationResponse struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Details json.RawMessage `json:"details"`
	Message string          `json:"message,omitempty"`
}

type MintResponse struct {
	ID          string `json:"id"`
	MintAddress string `json:"mintAddress"`
	ArweaveURL  string `json:"arweaveUrl"`
	Message     string `json:"message,omitempty"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

func toCertificateResponse(c *models.Certificate) *CertificateResponse {
	details := c.VerificationDetails
	if len(details) == 0 {
		details = json.RawMessage("null")
	}
	return &CertificateResponse{
		ID:                  c.ID.String(),
		Title:               c.Title,
		InstitutionName:     c.InstitutionName,
		ProgramName:         c.ProgramName,
		IssueDate:           c.IssueDate.Format(time.DateOnly),
		CertificateURL:      c.DocumentURL,
		VerificationURL:     c.VerificationURL,
		VerificationStatus:  c.Status.String(),
		VerificationDetails: details,
		ArweaveURL:          c.LedgerAddress,
		NFTMintAddress:      c.MintID,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func toLogEntryResponse(e *models.LogEntry) *LogEntryResponse {
	if e == nil {
		return nil
	}
	return &LogEntryResponse{
		ID:               e.ID.String(),
		VerificationStep: string(e.Step),
		Status:           e.Status,
		Details:          e.Details,
		CreatedAt:        e.CreatedAt,
	}
}

func toVerificationResponse(out *models.VerificationOutcome) VerificationResponse {
	details := out.Details
	if len(details) == 0 {
		details = json.RawMessage("null")
	}
	return VerificationResponse{
		ID:      out.CertificateID.String(),
		Status:  out.Status.String(),
		Details: details,
	}
}

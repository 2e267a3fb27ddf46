package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
)

const (
	maxFieldLength = 200

	ContentTypePDF  = "application/pdf"
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
)

var pdfMagic = []byte("%PDF-")

// SubmitRequest creates a certificate either by requesting a presigned upload
// URL or by sending the PDF bytes directly.
type SubmitRequest struct {
	UserID           id.UserID
	Title            string
	InstitutionName  string
	ProgramName      string
	IssueDate        string
	FileName         string
	FileType         string
	RequestUploadURL bool
	Document         []byte
}

func (r *SubmitRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.InstitutionName = strings.TrimSpace(r.InstitutionName)
	r.ProgramName = strings.TrimSpace(r.ProgramName)
	r.IssueDate = strings.TrimSpace(r.IssueDate)
	r.FileName = strings.TrimSpace(r.FileName)
	r.FileType = strings.ToLower(strings.TrimSpace(r.FileType))
	if r.FileType == "image/jpg" {
		r.FileType = ContentTypeJPEG
	}
}

// Validate checks metadata fields. Document bytes are checked separately
// because their limit is configuration.
func (r *SubmitRequest) Validate() error {
	if err := validateField("title", r.Title); err != nil {
		return err
	}
	if err := validateField("institutionName", r.InstitutionName); err != nil {
		return err
	}
	if err := validateField("programName", r.ProgramName); err != nil {
		return err
	}
	if _, err := r.ParsedIssueDate(); err != nil {
		return err
	}
	if r.FileName == "" {
		return dErrors.New(dErrors.CodeValidation, "fileName is required")
	}
	switch r.FileType {
	case ContentTypePDF:
	case ContentTypePNG, ContentTypeJPEG:
		if !r.RequestUploadURL {
			return dErrors.Newf(dErrors.CodeValidation, "unsupported file type for direct upload: %s", r.FileType)
		}
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unsupported file type: %s", r.FileType)
	}
	return nil
}

// ParsedIssueDate parses IssueDate as YYYY-MM-DD.
func (r *SubmitRequest) ParsedIssueDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, r.IssueDate)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "issueDate must be YYYY-MM-DD")
	}
	return t, nil
}

// ValidateDocument checks direct-upload bytes.
func ValidateDocument(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return dErrors.New(dErrors.CodeValidation, "document is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return dErrors.Newf(dErrors.CodeValidation, "document exceeds %d bytes", maxBytes)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return dErrors.New(dErrors.CodeValidation, "invalid PDF file")
	}
	return nil
}

func validateField(name, value string) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is required", name))
	}
	if n > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be at most %d characters", name, maxFieldLength))
	}
	return nil
}

// DocumentKey is the object storage key for a certificate's PDF.
func DocumentKey(userID id.UserID, certID id.CertificateID) string {
	return "certificates/" + userID.String() + "/" + certID.String() + ".pdf"
}

// SubmitResult carries the created record and, in presigned mode, the upload URL.
type SubmitResult struct {
	Certificate     *Certificate
	UploadURL       string
	UploadExpiresAt time.Time
}

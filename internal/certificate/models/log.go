package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	id "certifly/pkg/domain"
)

// LogStep names the external step a log entry records.
type LogStep string

const (
	StepExternalVerification LogStep = "external_verification"
	StepNFTMinting           LogStep = "nft_minting"
)

const (
	LogStatusSuccess = "success"
	LogStatusError   = "error"
)

// LogEntry is one append-only record of an external call made for a certificate.
// Status is success, error, or the oracle's verdict tag.
type LogEntry struct {
	ID            id.LogEntryID
	CertificateID id.CertificateID
	Step          LogStep
	Status        string
	Details       json.RawMessage
	CreatedAt     time.Time
}

func NewLogEntry(certID id.CertificateID, step LogStep, status string, details json.RawMessage, now time.Time) *LogEntry {
	return &LogEntry{
		ID:            id.LogEntryID(uuid.New()),
		CertificateID: certID,
		Step:          step,
		Status:        status,
		Details:       details,
		CreatedAt:     now,
	}
}

// NewErrorLogEntry records a failed step with the error text as a JSON string.
func NewErrorLogEntry(certID id.CertificateID, step LogStep, err error, now time.Time) *LogEntry {
	return NewLogEntry(certID, step, LogStatusError, TextDetails(err.Error()), now)
}

// TextDetails encodes free text as a JSON string.
func TextDetails(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

package models

import (
	"encoding/json"
	"time"

	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
)

// Status is the verification state of a certificate. Only pending may change,
// and only to verified or rejected.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

func (s Status) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected
}

func (s Status) String() string {
	return string(s)
}

// ParseVerdict maps an oracle verdict tag to a terminal status. Any other tag
// is not a persisted state.
func ParseVerdict(tag string) (Status, bool) {
	switch Status(tag) {
	case StatusVerified, StatusRejected:
		return Status(tag), true
	default:
		return "", false
	}
}

// Certificate is a user's submitted credential document and its verification
// and anchoring state.
type Certificate struct {
	ID                  id.CertificateID
	UserID              id.UserID
	Title               string
	InstitutionName     string
	ProgramName         string
	IssueDate           time.Time
	DocumentKey         string
	DocumentURL         string
	VerificationURL     string
	Status              Status
	VerificationDetails json.RawMessage
	LedgerAddress       *string
	MintID              *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsMinted reports whether a mint identifier has been recorded.
func (c *Certificate) IsMinted() bool {
	return c.MintID != nil && *c.MintID != ""
}

// IsAnchored reports whether the document has a ledger address.
func (c *Certificate) IsAnchored() bool {
	return c.LedgerAddress != nil && *c.LedgerAddress != ""
}

// CanMint enforces that only verified certificates are minted.
func (c *Certificate) CanMint() error {
	if c.Status != StatusVerified {
		return dErrors.New(dErrors.CodeInvalidState, "certificate must be verified before minting")
	}
	return nil
}

// MintDescription is the description attached to the minted token.
func (c *Certificate) MintDescription() string {
	return c.InstitutionName + " - " + c.ProgramName
}

// Clone returns a deep copy.
func (c *Certificate) Clone() *Certificate {
	if c == nil {
		return nil
	}
	out := *c
	if c.VerificationDetails != nil {
		out.VerificationDetails = append(json.RawMessage(nil), c.VerificationDetails...)
	}
	out.LedgerAddress = cloneString(c.LedgerAddress)
	out.MintID = cloneString(c.MintID)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Outcome tags coordinator results.
type Outcome string

const (
	OutcomeTransitioned   Outcome = "transitioned"
	OutcomeAlreadyInState Outcome = "already_in_state"
)

// VerificationOutcome is returned by verification requests and status reads.
type VerificationOutcome struct {
	CertificateID id.CertificateID
	Status        Status
	Details       json.RawMessage
	Outcome       Outcome
}

// MintOutcome is returned by mint requests.
type MintOutcome struct {
	CertificateID id.CertificateID
	MintID        string
	LedgerAddress string
	Outcome       Outcome
	Message       string
}

// CertificateDetails pairs a certificate with its verification history.
type CertificateDetails struct {
	Certificate *Certificate
	Logs        []*LogEntry
}

// CertificateSummary is a listing row with the most recent log entry.
type CertificateSummary struct {
	Certificate *Certificate
	LastLog     *LogEntry
}

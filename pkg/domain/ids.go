package domain

import (
	"github.com/google/uuid"

	dErrors "certifly/pkg/domain-errors"
)

// Typed identifiers. Each wraps a uuid.UUID so a certificate ID can never be
// passed where a user ID is expected.
type (
	UserID        uuid.UUID
	CertificateID uuid.UUID
	LogEntryID    uuid.UUID
)

func parseID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be nil")
	}
	return parsed, nil
}

// ParseUserID parses a user identifier at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseID("user ID", s)
	return UserID(u), err
}

// ParseCertificateID parses a certificate identifier at a trust boundary.
func ParseCertificateID(s string) (CertificateID, error) {
	u, err := parseID("certificate ID", s)
	return CertificateID(u), err
}

// ParseLogEntryID parses a verification log entry identifier.
func ParseLogEntryID(s string) (LogEntryID, error) {
	u, err := parseID("log entry ID", s)
	return LogEntryID(u), err
}

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id CertificateID) String() string { return uuid.UUID(id).String() }
func (id LogEntryID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CertificateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id LogEntryID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs appear as plain strings in JSON payloads.
func (id UserID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// MarshalText lets typed IDs appear as plain strings in JSON payloads.
func (id CertificateID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// MarshalText lets typed IDs appear as plain strings in JSON payloads.
func (id LogEntryID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText accepts any well-formed UUID, including the nil UUID carried
// by events that have no user.
func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id *CertificateID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = CertificateID(u)
	return nil
}

func (id *LogEntryID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = LogEntryID(u)
	return nil
}

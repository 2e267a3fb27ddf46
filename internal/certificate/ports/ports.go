// Package ports declares the external collaborators of the certificate
// coordinators.
package ports

import (
	"context"
	"encoding/json"
	"time"

	authmodels "certifly/internal/auth/models"
	id "certifly/pkg/domain"
)

// PresignedURL is a time-limited URL the client uses to talk to object storage directly.
type PresignedURL struct {
	URL       string
	Method    string
	ExpiresAt time.Time
}

// DocumentStore holds certificate documents.
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Presign(ctx context.Context, method, key, contentType string) (*PresignedURL, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// URL is the address the document will be reachable at once uploaded.
	URL(key string) string
}

// Verdict is the oracle's answer. Status is normally verified or rejected.
type Verdict struct {
	Status  string          `json:"status"`
	Details json.RawMessage `json:"details"`
}

// Oracle judges whether a certificate is authentic.
type Oracle interface {
	Verify(ctx context.Context, userID id.UserID, certID id.CertificateID) (*Verdict, error)
}

// Tag is a name/value pair stored with a ledger upload.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LedgerUploader anchors bytes on a content-addressed ledger and returns
// their permanent address.
type LedgerUploader interface {
	Upload(ctx context.Context, data []byte, tags []Tag) (string, error)
}

type MintRequest struct {
	LedgerAddress string           `json:"ledgerAddress"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	OwnerWallet   string           `json:"ownerWallet"`
	CertificateID id.CertificateID `json:"certificateId"`
	UserID        id.UserID        `json:"userId"`
}

// Minter issues a token of authenticity and returns its identifier.
type Minter interface {
	Mint(ctx context.Context, req MintRequest) (string, error)
}

// UserLookup resolves certificate owners.
type UserLookup interface {
	FindByID(ctx context.Context, userID id.UserID) (*authmodels.User, error)
}

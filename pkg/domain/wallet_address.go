package domain

import (
	"github.com/mr-tron/base58"

	dErrors "certifly/pkg/domain-errors"
)

// WalletAddress is the base-58 encoding of a 32-byte Ed25519 public key.
// Invariant: decodes to exactly 32 bytes.
//
// Usage: construct via ParseWalletAddress at trust boundaries; direct casting
// bypasses validation.
type WalletAddress string

const walletKeySize = 32

// ParseWalletAddress constructs a WalletAddress from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, is not base-58,
// or does not decode to a 32-byte key.
func ParseWalletAddress(s string) (WalletAddress, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address cannot be empty")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address is not base58")
	}
	if len(raw) != walletKeySize {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address has invalid length")
	}
	return WalletAddress(s), nil
}

// PublicKey returns the decoded key bytes. Only valid for parsed addresses.
func (w WalletAddress) PublicKey() []byte {
	raw, err := base58.Decode(string(w))
	if err != nil {
		return nil
	}
	return raw
}

// String returns the string representation of the wallet address.
func (w WalletAddress) String() string {
	return string(w)
}

// IsNil returns true if the address is empty.
func (w WalletAddress) IsNil() bool {
	return w == ""
}

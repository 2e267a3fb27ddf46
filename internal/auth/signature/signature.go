// Package signature verifies Ed25519 signatures produced by browser wallets.
//
// Public keys are base-58. Signatures are base-58 as well, except that some
// wallets hand back standard base-64; the presence of characters outside the
// base-58 alphabet selects the base-64 decoder.
package signature

import (
	"crypto/ed25519"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	signatureSize = ed25519.SignatureSize
	publicKeySize = ed25519.PublicKeySize
)

// Verifier checks wallet signatures. The zero value is not usable; use New.
type Verifier struct {
	logger *slog.Logger
}

// New returns a Verifier that logs rejection reasons at debug level.
func New(logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Verifier{logger: logger}
}

var defaultVerifier = New(nil)

// Verify reports whether sig is a valid signature of message by publicKey.
func Verify(message []byte, sig, publicKey string) bool {
	return defaultVerifier.Verify(message, sig, publicKey)
}

// Verify reports whether sig is a valid signature of message by publicKey.
// It never panics; every malformed input yields false.
func (v *Verifier) Verify(message []byte, sig, publicKey string) bool {
	key, err := base58.Decode(publicKey)
	if err != nil {
		v.logger.Debug("signature rejected", "reason", "public key not base58")
		return false
	}
	if len(key) != publicKeySize {
		v.logger.Debug("signature rejected", "reason", "public key length", "length", len(key))
		return false
	}

	raw, ok := decodeSignature(sig)
	if !ok {
		v.logger.Debug("signature rejected", "reason", "signature encoding")
		return false
	}
	if len(raw) != signatureSize {
		v.logger.Debug("signature rejected", "reason", "signature length", "length", len(raw))
		return false
	}

	if !ed25519.Verify(ed25519.PublicKey(key), message, raw) {
		v.logger.Debug("signature rejected", "reason", "verification failed")
		return false
	}
	return true
}

func decodeSignature(sig string) ([]byte, bool) {
	if sig == "" {
		return nil, false
	}
	if looksBase64(sig) {
		return decodeBase64(sig)
	}
	raw, err := base58.Decode(sig)
	if err == nil && len(raw) == signatureSize {
		return raw, true
	}
	if b64, ok := decodeBase64(sig); ok {
		return b64, true
	}
	return raw, err == nil
}

// looksBase64 reports whether s contains characters that base-58 excludes
// but base-64 uses.
func looksBase64(s string) bool {
	return strings.ContainsAny(s, "+/=0OIl")
}

func decodeBase64(s string) ([]byte, bool) {
	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		return raw, true
	}
	if raw, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return raw, true
	}
	return nil, false
}

package minting

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/zeebo/blake3"

	"certifly/internal/certificate/ports"
)

// Fake derives a deterministic mint id from the certificate and ledger
// address. Failures can be queued with FailNext.
type Fake struct {
	mu       sync.Mutex
	calls    int
	failures []error
	requests []ports.MintRequest
}

func NewFake() *Fake {
	return &Fake{}
}

// FailNext makes the next call return err.
func (f *Fake) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, err)
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) Requests() []ports.MintRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.MintRequest(nil), f.requests...)
}

func (f *Fake) Mint(ctx context.Context, req ports.MintRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	if err := ctx.Err(); err != nil {
		return "", ports.NewTransportError(serviceName, err)
	}
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return "", err
	}
	sum := blake3.Sum256([]byte(req.CertificateID.String() + "|" + req.LedgerAddress))
	return "mint_" + hex.EncodeToString(sum[:16]), nil
}

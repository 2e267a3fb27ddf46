package oracle

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"certifly/internal/certificate/ports"
	id "certifly/pkg/domain"
)

// Fake returns scripted verdicts. Unscripted certificates are verified, which
// makes it usable as the development oracle.
type Fake struct {
	mu       sync.Mutex
	verdicts map[id.CertificateID]ports.Verdict
	errs     map[id.CertificateID]error
	calls    atomic.Int64
}

func NewFake() *Fake {
	return &Fake{
		verdicts: make(map[id.CertificateID]ports.Verdict),
		errs:     make(map[id.CertificateID]error),
	}
}

// SetVerdict scripts the answer for certID.
func (f *Fake) SetVerdict(certID id.CertificateID, v ports.Verdict) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verdicts[certID] = v
	delete(f.errs, certID)
}

// SetError makes calls for certID fail with err.
func (f *Fake) SetError(certID id.CertificateID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[certID] = err
}

func (f *Fake) Calls() int {
	return int(f.calls.Load())
}

func (f *Fake) Verify(ctx context.Context, _ id.UserID, certID id.CertificateID) (*ports.Verdict, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, ports.NewTransportError(serviceName, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[certID]; ok {
		return nil, err
	}
	if v, ok := f.verdicts[certID]; ok {
		return &v, nil
	}
	return &ports.Verdict{
		Status:  "verified",
		Details: json.RawMessage(`{"source":"local"}`),
	}, nil
}

package ledger

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/zeebo/blake3"

	"certifly/internal/certificate/ports"
)

// AddressScheme prefixes addresses issued by MemoryLedger.
const AddressScheme = "ledger://"

// MemoryLedger content-addresses uploads with BLAKE3. Identical bytes always
// map to the same address. Failures can be queued with FailNext.
type MemoryLedger struct {
	mu       sync.RWMutex
	objects  map[string]object
	uploads  int
	failures []error
}

type object struct {
	data []byte
	tags []ports.Tag
}

func NewMemory() *MemoryLedger {
	return &MemoryLedger{objects: make(map[string]object)}
}

func (l *MemoryLedger) Upload(ctx context.Context, data []byte, tags []ports.Tag) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ports.NewTransportError(serviceName, err)
	}
	sum := blake3.Sum256(data)
	address := AddressScheme + hex.EncodeToString(sum[:])

	l.mu.Lock()
	defer l.mu.Unlock()
	l.uploads++
	if len(l.failures) > 0 {
		err := l.failures[0]
		l.failures = l.failures[1:]
		return "", err
	}
	if _, ok := l.objects[address]; !ok {
		l.objects[address] = object{
			data: append([]byte(nil), data...),
			tags: append([]ports.Tag(nil), tags...),
		}
	}
	return address, nil
}

// FailNext makes the next Upload return err without storing anything.
func (l *MemoryLedger) FailNext(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = append(l.failures, err)
}

// Uploads counts Upload calls, including repeats of the same content.
func (l *MemoryLedger) Uploads() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.uploads
}

// Tags returns the tags stored with address.
func (l *MemoryLedger) Tags(address string) ([]ports.Tag, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	obj, ok := l.objects[address]
	if !ok {
		return nil, false
	}
	return append([]ports.Tag(nil), obj.tags...), true
}

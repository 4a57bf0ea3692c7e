package ports

import "context"

// Fixed logical keys of the durable local state. Each write replaces the
// whole record.
const (
	KeySession = "session"
	KeyFilters = "filters"
	KeyDraft   = "orderData"
)

// StateStore is durable key/value storage that survives process restarts.
type StateStore interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Sealer protects records at rest.
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

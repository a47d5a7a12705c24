package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreUnavailable is returned while the store is rejecting writes.
var ErrStoreUnavailable = errors.New("storage: store unavailable")

// Appender is the persistence collaborator. Append must not modify the record.
type Appender interface {
	Append(ctx context.Context, rec Record) error
}

// Pinger is implemented by stores with a remote dependency worth probing.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is an appender that owns resources.
type Store interface {
	Appender
	Close() error
}

// MemoryStore keeps records in process. It is used when no persistent store
// is configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Records returns a copy of everything appended so far.
func (m *MemoryStore) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

func (m *MemoryStore) Close() error { return nil }

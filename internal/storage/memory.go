package storage

import (
	"context"
	"sync"

	"fincal/internal/store"
)

// MemoryBlob is an in-process store.Blob.
type MemoryBlob struct {
	mu          sync.Mutex
	data        []byte
	written     bool
	unavailable bool
	writes      int
}

var _ store.Blob = (*MemoryBlob)(nil)

func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{}
}

// UnavailableBlob returns a blob that rejects every call with
// store.ErrUnavailable, like storage outside a durable context.
func UnavailableBlob() *MemoryBlob {
	return &MemoryBlob{unavailable: true}
}

func (m *MemoryBlob) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return nil, store.ErrUnavailable
	}
	if !m.written {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryBlob) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return store.ErrUnavailable
	}
	m.data = append([]byte(nil), data...)
	m.written = true
	m.writes++
	return nil
}

// Writes returns how many times the blob was overwritten.
func (m *MemoryBlob) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

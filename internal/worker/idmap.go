package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"fincal/internal/store"
)

// RemoteIDsKey names the blob holding the local to remote id mapping.
const RemoteIDsKey = "financial-calendar-remote-ids"

// IDMap remembers which remote entry mirrors each local event. It is
// persisted as one JSON object in a blob, like the events themselves.
type IDMap struct {
	mu   sync.Mutex
	blob store.Blob
}

func NewIDMap(blob store.Blob) *IDMap {
	return &IDMap{blob: blob}
}

func (m *IDMap) Get(ctx context.Context, localID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, err := m.load(ctx)
	if err != nil {
		return "", false, err
	}
	remoteID, ok := ids[localID]
	return remoteID, ok, nil
}

func (m *IDMap) Put(ctx context.Context, localID, remoteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, err := m.load(ctx)
	if err != nil {
		return err
	}
	if ids[localID] == remoteID {
		return nil
	}
	ids[localID] = remoteID
	return m.save(ctx, ids)
}

func (m *IDMap) Delete(ctx context.Context, localID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, err := m.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := ids[localID]; !ok {
		return nil
	}
	delete(ids, localID)
	return m.save(ctx, ids)
}

// All returns a copy of the mapping.
func (m *IDMap) All(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

func (m *IDMap) load(ctx context.Context) (map[string]string, error) {
	ids := map[string]string{}
	data, err := m.blob.Read(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ids, nil
	case err != nil:
		return nil, fmt.Errorf("read id map: %w", err)
	}
	if len(data) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode id map: %w", err)
	}
	return ids, nil
}

func (m *IDMap) save(ctx context.Context, ids map[string]string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode id map: %w", err)
	}
	if err := m.blob.Write(ctx, data); err != nil {
		return fmt.Errorf("write id map: %w", err)
	}
	return nil
}

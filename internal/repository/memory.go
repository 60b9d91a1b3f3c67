package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// MemoryStore keeps documents in process memory. Documents are stored as
// serialized bytes so callers always get an independent copy, exactly like
// the durable stores. Used in tests and for local development.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context, gameID string) (*state.GameState, error) {
	m.mu.RLock()
	raw, ok := m.docs[gameID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("load %q: %w", gameID, ErrNotFound)
	}
	var st state.GameState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode game %q: %w", gameID, err)
	}
	return &st, nil
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, gameID string, st *state.GameState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode game %q: %w", gameID, err)
	}
	m.mu.Lock()
	m.docs[gameID] = raw
	m.mu.Unlock()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, gameID string) error {
	m.mu.Lock()
	delete(m.docs, gameID)
	m.mu.Unlock()
	return nil
}

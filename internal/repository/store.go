// Package repository provides the persistence adapters for game documents.
// A store holds one self-describing JSON document per game id; saves are
// atomic with respect to concurrent reads of the same id.
package repository

import (
	"context"
	"errors"

	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// ErrNotFound is returned when no document exists for a game id.
var ErrNotFound = errors.New("game not found")

// Store is the only component permitted to perform blocking I/O on behalf
// of the engine.
type Store interface {
	// Load returns the last committed document for the game id.
	Load(ctx context.Context, gameID string) (*state.GameState, error)
	// Save atomically replaces the document for the game id.
	Save(ctx context.Context, gameID string, st *state.GameState) error
	// Delete removes the document. Deleting a missing id is not an error.
	Delete(ctx context.Context, gameID string) error
}

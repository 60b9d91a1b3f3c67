package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// FileStore persists one JSON file per game under a directory. Saves write
// to a temp file in the same directory and rename over the target, so a
// concurrent Load sees either the old or the new document, never a partial
// write.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(gameID string) string {
	return filepath.Join(f.dir, gameID+".json")
}

// Load implements Store.
func (f *FileStore) Load(ctx context.Context, gameID string) (*state.GameState, error) {
	raw, err := os.ReadFile(f.path(gameID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %q: %w", gameID, ErrNotFound)
		}
		return nil, fmt.Errorf("load %q: %w", gameID, err)
	}
	var st state.GameState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode game %q: %w", gameID, err)
	}
	return &st, nil
}

// Save implements Store.
func (f *FileStore) Save(ctx context.Context, gameID string, st *state.GameState) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode game %q: %w", gameID, err)
	}
	tmp, err := os.CreateTemp(f.dir, gameID+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %q: %w", gameID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save %q: %w", gameID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save %q: %w", gameID, err)
	}
	if err := os.Rename(tmpName, f.path(gameID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save %q: %w", gameID, err)
	}
	return nil
}

// Delete implements Store.
func (f *FileStore) Delete(ctx context.Context, gameID string) error {
	err := os.Remove(f.path(gameID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %q: %w", gameID, err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/revrebgame/revreb-server-go/internal/config"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewDB opens the connection pool and ensures the schema exists.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("database ready",
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name),
	)
	return pool, nil
}

// PostgresStore persists game documents in a JSONB column. Each save is an
// upsert inside a transaction, so concurrent readers of the same id see
// either the previous or the new document.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context, gameID string) (*state.GameState, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM games WHERE id = $1`, gameID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
func (s *PostgresStore) Save(ctx context.Context, gameID string, st *state.GameState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode game %q: %w", gameID, err)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save %q: %w", gameID, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO games (id, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		gameID, raw)
	if err != nil {
		return fmt.Errorf("save %q: %w", gameID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save %q: %w", gameID, err)
	}
	return nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, gameID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, gameID); err != nil {
		return fmt.Errorf("delete %q: %w", gameID, err)
	}
	return nil
}

// Package database persists flat game snapshots to Postgres: one row at
// deal time for audit/replay seeds, one row at scoring time with the
// outcome. It stores snapshots as JSONB and never reconstructs live games.
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_snapshots (
    game_id    UUID        NOT NULL,
    stage      TEXT        NOT NULL,
    snapshot   JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (game_id, stage)
);

CREATE TABLE IF NOT EXISTS game_results (
    game_id    UUID        PRIMARY KEY,
    caller_id  TEXT        NOT NULL DEFAULT '',
    caller_won BOOLEAN     NOT NULL,
    winners    TEXT[]      NOT NULL,
    scores     JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Store wraps a pgx connection pool. A nil Store is valid and performs no
// writes, mirroring the optional-persistence contract of the cache package.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and ensures the schema exists. An empty DSN
// returns a nil store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// SaveSnapshot upserts one stage's snapshot for a game. Stage is "initial"
// or "final".
func (s *Store) SaveSnapshot(ctx context.Context, gameID uuid.UUID, stage string, snapshot []byte) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_snapshots (game_id, stage, snapshot)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, stage) DO UPDATE SET snapshot = EXCLUDED.snapshot`,
		gameID, stage, snapshot)
	if err != nil {
		return fmt.Errorf("database: save %s snapshot for game %s: %w", stage, gameID, err)
	}
	return nil
}

// SaveResult records the final outcome of a game.
func (s *Store) SaveResult(ctx context.Context, gameID uuid.UUID, callerID string, callerWon bool, winners []string, scores []byte) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_results (game_id, caller_id, caller_won, winners, scores)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id) DO UPDATE SET
			caller_id = EXCLUDED.caller_id,
			caller_won = EXCLUDED.caller_won,
			winners = EXCLUDED.winners,
			scores = EXCLUDED.scores`,
		gameID, callerID, callerWon, winners, scores)
	if err != nil {
		return fmt.Errorf("database: save result for game %s: %w", gameID, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s != nil {
		s.pool.Close()
	}
}

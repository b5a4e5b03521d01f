// Package cache publishes per-game action records to Redis so external
// replay and export tooling can consume full game logs without touching the
// in-process state.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ActionRecord is one applied action, as published to the game's Redis list.
// Index restores ordering for consumers that read the list out of band.
type ActionRecord struct {
	GameID    uuid.UUID       `json:"gameId"`
	Index     int             `json:"index"`
	PlayerID  string          `json:"playerId,omitempty"`
	Kind      string          `json:"kind"`
	Action    json.RawMessage `json:"action,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Publisher appends action records to a per-game Redis list. A nil Publisher
// is valid and drops everything, so callers never branch on configuration.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher connects a publisher to the given Redis address. The
// connection is verified lazily on first publish, not here.
func NewPublisher(addr, password string) *Publisher {
	if addr == "" {
		return nil
	}
	return &Publisher{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func gameKey(gameID uuid.UUID) string {
	return fmt.Sprintf("vinto:game:%s:actions", gameID)
}

// Publish appends one record to the game's action list and refreshes the
// list's expiry. Records for finished games age out after a day.
func (p *Publisher) Publish(ctx context.Context, rec ActionRecord) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache: marshal action record: %w", err)
	}
	key := gameKey(rec.GameID)
	pipe := p.rdb.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: publish action %d for game %s: %w", rec.Index, rec.GameID, err)
	}
	return nil
}

// History returns every record published for a game, in order.
func (p *Publisher) History(ctx context.Context, gameID uuid.UUID) ([]ActionRecord, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := p.rdb.LRange(ctx, gameKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: read history for game %s: %w", gameID, err)
	}
	out := make([]ActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec ActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("cache: decode history record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close releases the underlying Redis connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}

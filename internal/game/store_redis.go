package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionPersistence saves and loads game snapshots. Save rejects a snapshot
// older than the stored one with ErrStaleSnapshot.
type SessionPersistence interface {
	Save(ctx context.Context, gameID string, snap SessionSnapshot) error
	Load(ctx context.Context, gameID string) (SessionSnapshot, bool, error)
}

// optimistic-lock retries when another writer touches the key mid-save
const redisSaveRetries = 3

type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) key(gameID string) string {
	return "mastermind:game:" + gameID
}

// Save writes snap under WATCH so a late write from an earlier turn cannot
// overwrite a newer board. Every save refreshes the TTL.
func (s *RedisSessionStore) Save(ctx context.Context, gameID string, snap SessionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", gameID, err)
	}
	key := s.key(gameID)

	save := func(tx *redis.Tx) error {
		prev, found, err := decodeSnapshot(tx.Get(ctx, key))
		if err != nil {
			return err
		}
		if found && snap.olderThan(prev) {
			return fmt.Errorf("save %s (attempts %d, stored %d): %w",
				gameID, len(snap.History), len(prev.History), ErrStaleSnapshot)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}

	for range redisSaveRetries {
		err = s.rdb.Watch(ctx, save, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("save %s: %w", gameID, err)
}

func (s *RedisSessionStore) Load(ctx context.Context, gameID string) (SessionSnapshot, bool, error) {
	snap, found, err := decodeSnapshot(s.rdb.Get(ctx, s.key(gameID)))
	if err != nil {
		return SessionSnapshot{}, false, fmt.Errorf("load %s: %w", gameID, err)
	}
	return snap, found, nil
}

func decodeSnapshot(cmd *redis.StringCmd) (SessionSnapshot, bool, error) {
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionSnapshot{}, false, nil
	}
	if err != nil {
		return SessionSnapshot{}, false, err
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return SessionSnapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Package flagstore keeps the per-session "conversation should end" flags
// set by the background end checker. Reads consume: GETDEL returns the flag
// and clears it in one atomic step, so a chat turn observes each verdict at
// most once.
package flagstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL bounds how long an unconsumed verdict stays relevant. A stale "end"
// flag from an abandoned session should not terminate a resumed one.
const TTL = 30 * time.Minute

// Store records end verdicts in redis.
type Store struct {
	rdb *redis.Client
}

// New returns a Store backed by the given redis client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Connect dials redis at addr and verifies the connection.
func Connect(ctx context.Context, addr string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &Store{rdb: rdb}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func key(userID, day string) string {
	return "roleplay:end:" + userID + ":" + day
}

// SetShouldEnd marks the session's conversation as finished.
func (s *Store) SetShouldEnd(ctx context.Context, userID, day string) error {
	if err := s.rdb.Set(ctx, key(userID, day), "1", TTL).Err(); err != nil {
		return fmt.Errorf("set should-end flag: %w", err)
	}
	return nil
}

// ConsumeShouldEnd reads and clears the flag atomically. It reports true
// only the first time after the flag was set.
func (s *Store) ConsumeShouldEnd(ctx context.Context, userID, day string) (bool, error) {
	_, err := s.rdb.GetDel(ctx, key(userID, day)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume should-end flag: %w", err)
	}
	return true, nil
}

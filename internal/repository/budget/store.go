package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/plasmidq/internal/db"
)

// store is the consumer interface for budget operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps token and request counters in Redis (INCRBY + GET with TTL).
type Store struct {
	store    store
	dayTTL   time.Duration
	monthTTL time.Duration
}

// New creates a budget store. Counters outlive their period by a margin so
// a restart near the boundary still finds them: dayTTL ~48h, monthTTL ~62d.
func New(s store, dayTTL, monthTTL time.Duration) *Store {
	return &Store{store: s, dayTTL: dayTTL, monthTTL: monthTTL}
}

// IncrBy atomically increments a counter and arms its TTL once.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := s.store.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("budget INCRBY %s: %w", key, err)
	}
	// NX: a later increment must not push the expiry out.
	if err := s.store.Expire(ctx, key, s.ttlFor(key), true); err != nil {
		return fmt.Errorf("budget EXPIRE %s: %w", key, err)
	}
	return nil
}

// Get returns a counter value, 0 if the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("budget GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget GET %s parse: %w", key, err)
	}
	return val, nil
}

// ttlFor picks the TTL from the period segment of
// plasmidq:budget:{provider}:{day|month}:{date}[:requests].
func (s *Store) ttlFor(key string) time.Duration {
	if strings.Contains(key, ":day:") {
		return s.dayTTL
	}
	return s.monthTTL
}

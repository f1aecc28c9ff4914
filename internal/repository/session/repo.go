package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/query"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// store is the consumer interface for sessions (ISP).
type store interface {
	HSetWithTTL(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Repo keeps each session's current query so it can be exported later.
type Repo struct {
	store store
	ttl   time.Duration
	now   func() time.Time
}

// New creates a session repository. Every write refreshes the TTL.
func New(s store, ttl time.Duration) *Repo {
	return &Repo{store: s, ttl: ttl, now: time.Now}
}

// SaveCurrent replaces the session's current query.
func (r *Repo) SaveCurrent(ctx context.Context, sessionID string, req query.Request) error {
	key := sessionKey(sessionID)
	fields := map[string]string{
		"collection": req.Collection(),
		"mode":       string(req.Mode()),
		"query":      value.Compact(req.Query()),
		"updated_at": strconv.FormatInt(r.now().UnixMilli(), 10),
	}
	if err := r.store.HSetWithTTL(ctx, key, fields, r.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Current returns the session's current query or domain.ErrNoCurrentQuery.
func (r *Repo) Current(ctx context.Context, sessionID string) (query.Request, error) {
	m, err := r.store.HGetAll(ctx, sessionKey(sessionID))
	if err != nil {
		return query.Request{}, fmt.Errorf("hgetall session %s: %w", sessionID, err)
	}
	if len(m) == 0 || m["query"] == "" {
		return query.Request{}, domain.ErrNoCurrentQuery
	}

	req, err := query.ParseRequest(m["collection"], m["query"])
	if err != nil {
		return query.Request{}, fmt.Errorf("stored query for session %s: %w", sessionID, err)
	}
	return req, nil
}

// Clear forgets the session's current query.
func (r *Repo) Clear(ctx context.Context, sessionID string) error {
	if err := r.store.Del(ctx, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("del session %s: %w", sessionID, err)
	}
	return nil
}

// Key pattern: plasmidq:session:{id}

func sessionKey(id string) string {
	return fmt.Sprintf("%ssession:%s", domain.KeyPrefix, id)
}

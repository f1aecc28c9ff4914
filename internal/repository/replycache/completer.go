package replycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/db"
	"github.com/kailas-cloud/plasmidq/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "reply_cache:"

// store is the consumer interface for the reply cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedCompleter caches model replies per prompt in a key-value store.
// Only replies accepted by the accept func are stored, so a reply that
// failed to parse is requested again next time.
type CachedCompleter struct {
	inner      domain.Completer
	store      store
	ttl        time.Duration
	model      string
	accept     func(reply string) bool
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
// A nil accept stores every non-empty reply.
func New(
	inner domain.Completer,
	s store,
	ttl time.Duration,
	model string,
	accept func(reply string) bool,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedCompleter {
	return &CachedCompleter{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		model:      model,
		accept:     accept,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Complete returns a cached reply or calls the inner completer.
// Cache hit: token counts are zero (no real tokens consumed).
func (c *CachedCompleter) Complete(ctx context.Context, prompt string) (domain.Completion, error) {
	key := c.cacheKey(prompt)

	if text, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.Completion{Text: text}, nil
	}

	c.incCache("miss")

	result, err := c.inner.Complete(ctx, prompt)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete prompt: %w", err)
	}

	if result.Text != "" && (c.accept == nil || c.accept(result.Text)) {
		c.putToCache(ctx, key, result.Text)
	}
	return result, nil
}

func (c *CachedCompleter) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedCompleter) cacheKey(prompt string) string {
	h := sha256.Sum256([]byte(c.model + "\x00" + prompt))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedCompleter) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached reply", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedCompleter) putToCache(ctx context.Context, key, text string) {
	if err := c.store.SetWithTTL(ctx, key, []byte(text), c.ttl); err != nil {
		c.logger.Warn("Failed to cache reply", zap.String("key", key), zap.Error(err))
	}
}

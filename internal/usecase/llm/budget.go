package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/usage"
)

// BudgetAction defines behavior when the token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but lets the completion through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the completion.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore persists budget counters. IncrBy may be retried.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// window is one accounting period (day or month).
type window struct {
	period   usage.Period
	limit    int64
	used     int64
	requests int64
	start    time.Time
}

func (w *window) roll(now time.Time) {
	if s := periodStart(w.period, now); s.After(w.start) {
		w.start = s
		w.used = 0
		w.requests = 0
	}
}

func (w *window) exceeded() bool {
	return w.limit > 0 && w.used >= w.limit
}

func (w *window) remaining() int64 {
	if w.limit == 0 {
		return -1
	}
	return max(w.limit-w.used, 0)
}

func (w *window) key(provider, suffix string) string {
	layout := "2006-01-02"
	if w.period == usage.PeriodMonth {
		layout = "2006-01"
	}
	k := fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, provider, w.period, w.start.Format(layout))
	if suffix != "" {
		k += ":" + suffix
	}
	return k
}

func (w *window) snapshot() usage.Window {
	return usage.Window{
		Limit:    w.limit,
		Used:     w.used,
		Requests: w.requests,
		Start:    w.start,
		End:      periodEnd(w.period, w.start),
	}
}

// BudgetTracker keeps daily and monthly token counters in memory.
// Check never leaves the process; Record writes behind to the store.
type BudgetTracker struct {
	mu       sync.Mutex
	day      window
	month    window
	action   BudgetAction
	provider string
	store    BudgetStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewBudgetTracker creates a tracker. A zero limit disables that period.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &BudgetTracker{
		day:      window{period: usage.PeriodDay, limit: dailyLimit},
		month:    window{period: usage.PeriodMonth, limit: monthlyLimit},
		action:   action,
		provider: provider,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	now := b.now()
	b.day.roll(now)
	b.month.roll(now)
	return b
}

// WithStore attaches a persistence store and loads the current counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.store = store
	b.load(ctx)
	return b
}

func (b *BudgetTracker) load(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range []*window{&b.day, &b.month} {
		used, err := b.store.Get(ctx, w.key(b.provider, ""))
		if err != nil {
			b.logger.Warn("Failed to load budget from store",
				zap.String("period", string(w.period)), zap.Error(err))
			continue
		}
		w.used = used
		if reqs, err := b.store.Get(ctx, w.key(b.provider, "requests")); err == nil {
			w.requests = reqs
		}
	}

	b.logger.Info("Budget loaded from store",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("monthly_used", b.month.used),
	)
}

// Check reports whether a new completion may start.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	if !b.day.exceeded() && !b.month.exceeded() {
		return nil
	}

	if b.action == BudgetActionReject {
		return domain.ErrCompletionQuotaExceeded
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("daily_limit", b.day.limit),
		zap.Int64("monthly_used", b.month.used),
		zap.Int64("monthly_limit", b.month.limit),
	)
	return nil
}

// Record counts one completion and its tokens.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.rollLocked()
	type write struct {
		key string
		val int64
	}
	var writes []write
	for _, w := range []*window{&b.day, &b.month} {
		w.used += tokens
		w.requests++
		if tokens > 0 {
			writes = append(writes, write{w.key(b.provider, ""), tokens})
		}
		writes = append(writes, write{w.key(b.provider, "requests"), 1})
	}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Background context: the caller's request may already be done.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, w := range writes {
		if err := store.IncrBy(ctx, w.key, w.val); err != nil {
			b.logger.Warn("Failed to persist budget", zap.String("key", w.key), zap.Error(err))
		}
	}
}

// Remaining returns tokens left in a period, -1 when unlimited.
func (b *BudgetTracker) Remaining(period usage.Period) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.windowLocked(period).remaining()
}

// Window returns the current state of a period. PeriodTotal reads the month.
func (b *BudgetTracker) Window(period usage.Period) usage.Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.windowLocked(period).snapshot()
}

func (b *BudgetTracker) windowLocked(period usage.Period) *window {
	if period == usage.PeriodDay {
		return &b.day
	}
	return &b.month
}

func (b *BudgetTracker) rollLocked() {
	now := b.now()
	b.day.roll(now)
	b.month.roll(now)
}

func periodStart(p usage.Period, t time.Time) time.Time {
	if p == usage.PeriodDay {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func periodEnd(p usage.Period, start time.Time) time.Time {
	if p == usage.PeriodDay {
		return start.AddDate(0, 0, 1)
	}
	return start.AddDate(0, 1, 0)
}

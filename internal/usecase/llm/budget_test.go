package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/usage"
)

func TestBudgetTracker_RejectWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionReject, zap.NewNop())

	bt.Record(100)

	err := bt.Check(context.Background())
	if !errors.Is(err, domain.ErrCompletionQuotaExceeded) {
		t.Fatalf("expected domain.ErrCompletionQuotaExceeded, got %v", err)
	}
}

func TestBudgetTracker_WarnWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionWarn, zap.NewNop())

	bt.Record(200)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
}

func TestBudgetTracker_MonthlyReject(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 500, BudgetActionReject, zap.NewNop())

	bt.Record(500)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrCompletionQuotaExceeded) {
		t.Fatalf("expected domain.ErrCompletionQuotaExceeded for monthly limit, got %v", err)
	}
}

func TestBudgetTracker_UnlimitedWhenZero(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 0, BudgetActionReject, zap.NewNop())

	bt.Record(999999999)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for unlimited budget, got %v", err)
	}
	if bt.Remaining(usage.PeriodDay) != -1 || bt.Remaining(usage.PeriodMonth) != -1 {
		t.Error("expected -1 remaining for unlimited budget")
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := NewBudgetTracker("test", 1000, 10000, BudgetActionWarn, zap.NewNop())

	bt.Record(300)

	if got := bt.Remaining(usage.PeriodDay); got != 700 {
		t.Errorf("expected daily remaining 700, got %d", got)
	}
	if got := bt.Remaining(usage.PeriodMonth); got != 9700 {
		t.Errorf("expected monthly remaining 9700, got %d", got)
	}
}

func TestBudgetTracker_Window(t *testing.T) {
	bt := NewBudgetTracker("test", 1000, 0, BudgetActionWarn, zap.NewNop())
	bt.now = func() time.Time { return time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC) }
	bt.Record(120)
	bt.Record(0)

	w := bt.Window(usage.PeriodDay)
	if w.Used != 120 || w.Requests != 2 || w.Limit != 1000 {
		t.Errorf("day window = %+v", w)
	}
	if !w.Start.Equal(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)) ||
		!w.End.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day bounds = %s .. %s", w.Start, w.End)
	}
	m := bt.Window(usage.PeriodMonth)
	if !m.End.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month end = %s", m.End)
	}
}

func TestBudgetTracker_RollsOverAtMidnight(t *testing.T) {
	now := time.Date(2026, 10, 31, 23, 59, 0, 0, time.UTC)
	bt := NewBudgetTracker("test", 100, 1000, BudgetActionReject, zap.NewNop())
	bt.now = func() time.Time { return now }

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before midnight")
	}

	now = now.Add(2 * time.Minute)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected budget reset after midnight, got %v", err)
	}
	if w := bt.Window(usage.PeriodMonth); w.Used != 0 {
		t.Errorf("month must roll over too, used = %d", w.Used)
	}
}

// --- Mock BudgetStore ---

type mockBudgetStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

// --- Persistence tests ---

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockBudgetStore()

	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionReject, zap.NewNop())
	store.data[bt.day.key("prov", "")] = 300
	store.data[bt.day.key("prov", "requests")] = 4
	store.data[bt.month.key("prov", "")] = 5000

	bt.WithStore(context.Background(), store)

	if w := bt.Window(usage.PeriodDay); w.Used != 300 || w.Requests != 4 {
		t.Errorf("day window = %+v", w)
	}
	if w := bt.Window(usage.PeriodMonth); w.Used != 5000 {
		t.Errorf("expected monthly used 5000, got %d", w.Used)
	}
}

func TestBudgetTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("prov", 10000, 100000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(context.Background(), store)

	bt.Record(100)
	bt.Record(200)
	bt.Record(300)

	store.mu.Lock()
	defer store.mu.Unlock()
	if v := store.data[bt.day.key("prov", "")]; v != 600 {
		t.Errorf("expected store daily=600, got %d", v)
	}
	if v := store.data[bt.month.key("prov", "requests")]; v != 3 {
		t.Errorf("expected store monthly requests=3, got %d", v)
	}
}

func TestBudgetTracker_WithStore_LoadError(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")

	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionReject, zap.NewNop())
	bt.WithStore(context.Background(), store)

	if w := bt.Window(usage.PeriodDay); w.Used != 0 {
		t.Errorf("expected daily used 0 on load error, got %d", w.Used)
	}
}

func TestBudgetTracker_Record_StoreWriteError(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(context.Background(), store)

	store.mu.Lock()
	store.setErr = errors.New("write timeout")
	store.mu.Unlock()

	bt.Record(50)

	if w := bt.Window(usage.PeriodDay); w.Used != 50 {
		t.Errorf("expected daily used 50 even with store error, got %d", w.Used)
	}
}

func TestBudgetTracker_KeyFormat(t *testing.T) {
	bt := NewBudgetTracker("ollama", 0, 0, BudgetActionWarn, zap.NewNop())
	bt.now = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) }
	bt.day.start, bt.month.start = time.Time{}, time.Time{}
	bt.rollLocked()

	if got := bt.day.key("ollama", ""); got != "plasmidq:budget:ollama:day:2026-03-07" {
		t.Errorf("day key = %s", got)
	}
	if got := bt.month.key("ollama", "requests"); got != "plasmidq:budget:ollama:month:2026-03:requests" {
		t.Errorf("month key = %s", got)
	}
	if !strings.HasPrefix(bt.day.key("x", ""), domain.KeyPrefix) {
		t.Error("keys must carry the service prefix")
	}
}

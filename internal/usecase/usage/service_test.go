package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/plasmidq/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	windows map[domusage.Period]domusage.Window
	asked   []domusage.Period
}

func (m *mockBudgetReader) Window(p domusage.Period) domusage.Window {
	m.asked = append(m.asked, p)
	return m.windows[p]
}

func newReader() *mockBudgetReader {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	month := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return &mockBudgetReader{windows: map[domusage.Period]domusage.Window{
		domusage.PeriodDay:   {Limit: 10000, Used: 3000, Requests: 2, Start: day, End: day.AddDate(0, 0, 1)},
		domusage.PeriodMonth: {Limit: 100000, Used: 100000, Requests: 40, Start: month, End: month.AddDate(0, 1, 0)},
		domusage.PeriodTotal: {Limit: 100000, Used: 100000, Requests: 40, Start: month, End: month.AddDate(0, 1, 0)},
	}}
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	svc := New(newReader(), "codellama")
	r := svc.GetReport(context.Background(), domusage.PeriodDay)

	if r.Period() != domusage.PeriodDay {
		t.Errorf("expected period %q, got %q", domusage.PeriodDay, r.Period())
	}
	dayStart := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != dayStart.UnixMilli() {
		t.Errorf("period start = %d", r.PeriodStart())
	}
	if r.PeriodEnd() != dayStart.Add(24*time.Hour).UnixMilli() {
		t.Errorf("period end = %d", r.PeriodEnd())
	}
	if r.Budget().TokensRemaining() != 7000 {
		t.Errorf("expected remaining 7000, got %d", r.Budget().TokensRemaining())
	}
	if r.Budget().ResetsAt() != r.PeriodEnd() {
		t.Error("budget resets at the end of the period")
	}
	if r.Metrics().Tokens() != 3000 || r.Metrics().CompletionRequests() != 2 {
		t.Errorf("metrics = %+v", r.Metrics())
	}
	if r.Model() != "codellama" {
		t.Errorf("Model() = %q", r.Model())
	}
}

func TestGetReport_MonthlyExhausted(t *testing.T) {
	svc := New(newReader(), "m")
	r := svc.GetReport(context.Background(), domusage.PeriodMonth)

	if !r.Budget().IsExhausted() {
		t.Error("budget should be exhausted when used reaches the limit")
	}
	if r.PeriodEnd() != time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("period end = %d", r.PeriodEnd())
	}
}

func TestGetReport_TotalPeriod(t *testing.T) {
	br := newReader()
	svc := New(br, "m")
	r := svc.GetReport(context.Background(), domusage.PeriodTotal)

	if r.PeriodStart() != 0 || r.PeriodEnd() != 0 {
		t.Errorf("total period has no boundaries, got %d..%d", r.PeriodStart(), r.PeriodEnd())
	}
	if r.Budget().ResetsAt() != 0 {
		t.Errorf("ResetsAt() = %d", r.Budget().ResetsAt())
	}
	if r.Budget().TokensLimit() != 100000 {
		t.Errorf("expected limit 100000, got %d", r.Budget().TokensLimit())
	}
}

func TestGetReport_NilBudgetReader(t *testing.T) {
	svc := New(nil, "m")
	r := svc.GetReport(context.Background(), domusage.PeriodDay)

	if r.Budget().TokensLimit() != 0 {
		t.Errorf("expected limit 0, got %d", r.Budget().TokensLimit())
	}
	if r.Budget().TokensRemaining() != -1 {
		t.Errorf("expected unlimited remaining, got %d", r.Budget().TokensRemaining())
	}
	if r.Budget().IsExhausted() {
		t.Error("nil budget reader should not be exhausted")
	}
}

package usage

import (
	"context"

	domusage "github.com/kailas-cloud/plasmidq/internal/domain/usage"
	"github.com/kailas-cloud/plasmidq/internal/domain/usage/budget"
	"github.com/kailas-cloud/plasmidq/internal/domain/usage/metrics"
)

// Service handles usage reporting.
type Service struct {
	br    BudgetReader
	model string
}

// New creates a Service. br can be nil (no budget configured).
func New(br BudgetReader, model string) *Service {
	return &Service{br: br, model: model}
}

// GetReport builds a usage report for the given period.
// Total reports the running month without period boundaries: counters are
// kept per month only.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	if s.br == nil {
		return domusage.NewReport(period, 0, 0, s.model, metrics.Metrics{}, budget.New(0, 0, 0))
	}

	w := s.br.Window(period)
	var start, end int64
	if period != domusage.PeriodTotal {
		start = w.Start.UnixMilli()
		end = w.End.UnixMilli()
	}

	return domusage.NewReport(period, start, end, s.model,
		metrics.New(w.Requests, w.Used),
		budget.New(w.Limit, w.Used, end),
	)
}

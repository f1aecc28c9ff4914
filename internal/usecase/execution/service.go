package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/db"
	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/query"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
	"github.com/kailas-cloud/plasmidq/internal/metrics"
	"github.com/kailas-cloud/plasmidq/internal/usecase/projection"
)

// NoResultsNotice is shown instead of a table when a display run is empty.
const NoResultsNotice = "No results found."

// Limits bounds what a run returns.
type Limits struct {
	DisplayLimit   int // rows shown per display run
	MaxExportRows  int // 0 = unlimited
	MaxFieldLength int // per projected value, 0 = unlimited
}

// Result is a projected display run.
type Result struct {
	Columns []string
	Rows    [][]string
	Notice  string
}

// Service runs queries and projects the documents into flat rows.
type Service struct {
	exec     Executor
	sessions SessionStore
	limits   Limits
	logger   *zap.Logger
}

// New creates an execution service.
func New(exec Executor, sessions SessionStore, limits Limits, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{exec: exec, sessions: sessions, limits: limits, logger: logger}
}

// Run executes req for display: the pipeline's own $limit stages are replaced
// by the display limit. On success the request becomes the session's current
// query (sessionID may be empty to skip that).
func (s *Service) Run(ctx context.Context, sessionID string, req query.Request) (Result, error) {
	docs, err := s.execute(ctx, req, displayPlan(req, s.limits.DisplayLimit))
	if err != nil {
		return Result{}, err
	}

	if sessionID != "" && s.sessions != nil {
		if err := s.sessions.SaveCurrent(ctx, sessionID, req); err != nil {
			// The rows are still good; only a later export will miss them.
			s.logger.Warn("Failed to store current query", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	if len(docs) == 0 {
		return Result{Columns: []string{}, Rows: [][]string{}, Notice: NoResultsNotice}, nil
	}

	header, records := projection.Table(s.project(docs))
	return Result{Columns: header, Rows: records}, nil
}

// Export re-runs the session's current query without the display limit.
func (s *Service) Export(ctx context.Context, sessionID string) ([]string, [][]string, error) {
	if sessionID == "" || s.sessions == nil {
		return nil, nil, domain.ErrNoCurrentQuery
	}
	req, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	docs, err := s.execute(ctx, req, exportPlan(req, s.limits.MaxExportRows))
	if err != nil {
		return nil, nil, err
	}
	if len(docs) == 0 {
		return nil, nil, domain.ErrNoResults
	}

	header, records := projection.Table(s.project(docs))
	s.logger.Info("Export prepared",
		zap.String("session_id", sessionID),
		zap.String("collection", req.Collection()),
		zap.Int("rows", len(records)),
	)
	return header, records, nil
}

// Reset forgets the session's current query so the next export reports
// domain.ErrNoCurrentQuery until another query is run.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" || s.sessions == nil {
		return nil
	}
	return s.sessions.Clear(ctx, sessionID)
}

// plan is a request rewritten for one kind of run.
type plan struct {
	pipeline []value.Value
	limit    int64
}

func displayPlan(req query.Request, limit int) plan {
	if req.Mode() == query.ModeFind {
		return plan{limit: int64(limit)}
	}
	stages := stripLimits(req.Query().Items())
	if limit > 0 {
		stages = append(stages, limitStage(limit))
	}
	return plan{pipeline: stages}
}

func exportPlan(req query.Request, maxRows int) plan {
	if req.Mode() == query.ModeFind {
		return plan{limit: int64(maxRows)}
	}
	stages := append([]value.Value(nil), req.Query().Items()...)
	if maxRows > 0 {
		stages = append(stages, limitStage(maxRows))
	}
	return plan{pipeline: stages}
}

// stripLimits drops every stage that carries a $limit key.
func stripLimits(stages []value.Value) []value.Value {
	out := make([]value.Value, 0, len(stages)+1)
	for _, st := range stages {
		if st.Has("$limit") {
			continue
		}
		out = append(out, st)
	}
	return out
}

func limitStage(n int) value.Value {
	return value.Mapping(value.Member{Key: "$limit", Value: value.Int(int64(n))})
}

func (s *Service) execute(ctx context.Context, req query.Request, p plan) ([]value.Value, error) {
	mode := string(req.Mode())
	start := time.Now()

	var docs []value.Value
	var err error
	if req.Mode() == query.ModeAggregate {
		docs, err = s.exec.Aggregate(ctx, req.Collection(), p.pipeline)
	} else {
		docs, err = s.exec.Find(ctx, req.Collection(), req.Query(), p.limit)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.QueryExecutionDuration.WithLabelValues(mode, status).Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Error("Query execution failed",
			zap.String("collection", req.Collection()),
			zap.String("mode", mode),
			zap.Error(err),
		)
		if errors.Is(err, db.ErrQueryRejected) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		return nil, fmt.Errorf("%s %s: %w", mode, req.Collection(), err)
	}
	return docs, nil
}

func (s *Service) project(docs []value.Value) []projection.Row {
	metrics.ProjectedRowsTotal.Add(float64(len(docs)))
	return projection.ProjectAll(docs, s.limits.MaxFieldLength)
}

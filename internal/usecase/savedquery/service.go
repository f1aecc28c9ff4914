package savedquery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domsq "github.com/kailas-cloud/plasmidq/internal/domain/savedquery"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// Action reports what Save did.
type Action string

const (
	// ActionInserted means a new premade query was created.
	ActionInserted Action = "inserted"
	// ActionUpdated means an existing question got a new query.
	ActionUpdated Action = "updated"
)

// Listed is a premade query prepared for display.
type Listed struct {
	ID              string
	NaturalLanguage string
	Collection      string
	Query           string // indented JSON
}

// Service manages premade queries.
type Service struct {
	repo           Repository
	maxQueryLength int
	logger         *zap.Logger
}

// New creates a saved query service. maxQueryLength caps the question text
// in listings (0 = no cap).
func New(repo Repository, maxQueryLength int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, maxQueryLength: maxQueryLength, logger: logger}
}

// Save validates and upserts a premade query keyed by its question text.
func (s *Service) Save(ctx context.Context, naturalLanguage, collection, queryText string) (Action, error) {
	q, err := domsq.New(naturalLanguage, collection, queryText)
	if err != nil {
		return "", err
	}

	inserted, err := s.repo.Save(ctx, q)
	if err != nil {
		return "", fmt.Errorf("save premade query: %w", err)
	}

	action := ActionUpdated
	if inserted {
		action = ActionInserted
	}
	s.logger.Info("Premade query saved",
		zap.String("action", string(action)),
		zap.String("collection", q.Collection()),
		zap.String("natural_language", q.Summary(s.maxQueryLength)),
	)
	return action, nil
}

// List returns premade queries, optionally filtered by a substring of the question.
func (s *Service) List(ctx context.Context, search string) ([]Listed, error) {
	qs, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("list premade queries: %w", err)
	}

	out := make([]Listed, len(qs))
	for i, q := range qs {
		out[i] = Listed{
			ID:              q.ID(),
			NaturalLanguage: q.Summary(s.maxQueryLength),
			Collection:      q.Collection(),
			Query:           value.Indent(q.Query(), "    "),
		}
	}
	return out, nil
}

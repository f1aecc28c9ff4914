package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/query"
	"github.com/kailas-cloud/plasmidq/internal/metrics"
)

// Result is a successful synthesis.
type Result struct {
	Query    query.Validated
	RawReply string
	Tokens   int
}

// Service turns a question into a validated query by prompting the model once.
// Failures are returned to the caller; nothing is retried.
type Service struct {
	prompts   *PromptBuilder
	completer Completer
	logger    *zap.Logger
}

// New creates a synthesis service.
func New(prompts *PromptBuilder, completer Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{prompts: prompts, completer: completer, logger: logger}
}

// Synthesize prompts the model with question and validates its reply.
func (s *Service) Synthesize(ctx context.Context, question string) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, domain.ErrEmptyQuestion
	}

	completion, err := s.completer.Complete(ctx, s.prompts.Build(question))
	if err != nil {
		metrics.SynthesisTotal.WithLabelValues(metrics.OutcomeProviderError).Inc()
		return Result{}, fmt.Errorf("complete: %w", err)
	}

	q, err := Parse(completion.Text)
	outcome := outcomeOf(err)
	metrics.SynthesisTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		s.logger.Warn("Model reply rejected",
			zap.String("outcome", outcome),
			zap.Int("reply_len", len(completion.Text)),
			zap.Error(err),
		)
		return Result{RawReply: completion.Text, Tokens: completion.TotalTokens}, err
	}

	s.logger.Debug("Query synthesized",
		zap.String("collection", q.Collection),
		zap.Int("stages", len(q.Pipeline)),
		zap.Int("total_tokens", completion.TotalTokens),
	)
	return Result{Query: q, RawReply: completion.Text, Tokens: completion.TotalTokens}, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrMissingField):
		return metrics.OutcomeMissingField
	case errors.Is(err, domain.ErrInvalidStage):
		return metrics.OutcomeInvalidStage
	default:
		return metrics.OutcomeMalformedSyntax
	}
}

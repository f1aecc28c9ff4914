package synthesis

import (
	"context"

	"github.com/kailas-cloud/plasmidq/internal/domain"
)

// Completer sends a prompt to the language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (domain.Completion, error)
}

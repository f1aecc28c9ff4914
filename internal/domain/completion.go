package domain

import "context"

// Completer is the shared text generation contract between layers.
type Completer interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// HealthChecker verifies model provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Completion carries the model reply and token usage through the decorator chain.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

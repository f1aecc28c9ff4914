package plasmidq

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	openaiLLM "github.com/kailas-cloud/plasmidq/internal/transport/openai"
)

// Completer sends a prompt to a language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// Completion carries the model reply and token counts.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// OpenAIConfig configures the built-in OpenAI-compatible completer.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // e.g. http://localhost:11434/v1 for Ollama
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// NewOpenAICompleter returns a Completer for any OpenAI-compatible chat endpoint.
func NewOpenAICompleter(cfg OpenAIConfig) Completer {
	return &openAICompleter{inner: openaiLLM.NewCompleter(&openaiLLM.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
		Provider:    "sdk",
	})}
}

type openAICompleter struct {
	inner *openaiLLM.Completer
}

func (c *openAICompleter) Complete(ctx context.Context, prompt string) (Completion, error) {
	res, err := c.inner.Complete(ctx, prompt)
	if err != nil {
		return Completion{}, err
	}
	return Completion(res), nil
}

// completerAdapter adapts the public Completer to domain.Completer.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, prompt string) (domain.Completion, error) {
	res, err := a.inner.Complete(ctx, prompt)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}
	return domain.Completion(res), nil
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration signals an unusable startup input (schema, example corpus, settings).
	ErrConfiguration = errors.New("configuration error")

	// ErrMalformedSyntax signals a model reply that is not valid JSON after sanitizing.
	ErrMalformedSyntax = errors.New("malformed syntax")
	// ErrMissingField signals a reply object without a required top-level field.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidStage signals a pipeline element that is not an object.
	ErrInvalidStage = errors.New("invalid stage")

	// ErrEmptyQuestion signals a blank natural-language question.
	ErrEmptyQuestion = errors.New("empty question")
	// ErrInvalidQuery signals a query that cannot be executed as given.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNoCurrentQuery signals a session without an executed query.
	ErrNoCurrentQuery = errors.New("no current query")
	// ErrNoResults signals an export of an empty result set.
	ErrNoResults = errors.New("no results")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrCompletionQuotaExceeded signals an exhausted completion token budget.
	ErrCompletionQuotaExceeded = errors.New("completion quota exceeded")
	// ErrLLMProviderError signals a language model provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
)

// ConfigurationError wraps ErrConfiguration with the offending source.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Source)
	}
	return fmt.Sprintf("%s: %s: %v", ErrConfiguration.Error(), e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}

// NewConfigurationError creates a configuration error for source.
func NewConfigurationError(source string, err error) error {
	return &ConfigurationError{Source: source, Err: err}
}

// MalformedSyntaxError wraps ErrMalformedSyntax with the parser diagnostic.
type MalformedSyntaxError struct {
	Err error
}

func (e *MalformedSyntaxError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedSyntax.Error(), e.Err)
}

// Unwrap exposes both the sentinel and the parser error.
func (e *MalformedSyntaxError) Unwrap() []error { return []error{ErrMalformedSyntax, e.Err} }

// MissingFieldError names the absent or mistyped top-level field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField.Error(), e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// InvalidStageError carries the zero-based position of the offending stage.
type InvalidStageError struct {
	Index int
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("%s: stage %d is not an object", ErrInvalidStage.Error(), e.Index)
}

func (e *InvalidStageError) Unwrap() error { return ErrInvalidStage }

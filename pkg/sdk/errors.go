package plasmidq

import (
	"errors"

	"github.com/kailas-cloud/plasmidq/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrConfiguration           = domain.ErrConfiguration
	ErrMalformedSyntax         = domain.ErrMalformedSyntax
	ErrMissingField            = domain.ErrMissingField
	ErrInvalidStage            = domain.ErrInvalidStage
	ErrEmptyQuestion           = domain.ErrEmptyQuestion
	ErrInvalidQuery            = domain.ErrInvalidQuery
	ErrCompletionQuotaExceeded = domain.ErrCompletionQuotaExceeded
	ErrLLMProviderError        = domain.ErrLLMProviderError
)

// ErrNoCompleter is returned by Synthesize when no Completer was configured.
var ErrNoCompleter = errors.New("plasmidq: no completer configured (use WithCompleter)")

// Typed errors carrying detail, re-exported for errors.As.
type (
	MalformedSyntaxError = domain.MalformedSyntaxError
	MissingFieldError    = domain.MissingFieldError
	InvalidStageError    = domain.InvalidStageError
)

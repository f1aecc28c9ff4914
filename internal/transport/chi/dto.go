package chi

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// ErrorCode is the machine-readable error code of an API error response.
type ErrorCode string

// API error codes.
const (
	ErrorCodeBadRequest              ErrorCode = "bad_request"
	ErrorCodeUnauthorized            ErrorCode = "unauthorized"
	ErrorCodeValidationFailed        ErrorCode = "validation_failed"
	ErrorCodeMalformedSyntax         ErrorCode = "malformed_syntax"
	ErrorCodeMissingField            ErrorCode = "missing_field"
	ErrorCodeInvalidStage            ErrorCode = "invalid_stage"
	ErrorCodeInvalidQuery            ErrorCode = "invalid_query"
	ErrorCodeNoCurrentQuery          ErrorCode = "no_current_query"
	ErrorCodeNoResults               ErrorCode = "no_results"
	ErrorCodeNotFound                ErrorCode = "not_found"
	ErrorCodeRateLimited             ErrorCode = "rate_limited"
	ErrorCodeCompletionQuotaExceeded ErrorCode = "completion_quota_exceeded"
	ErrorCodeLLMProviderError        ErrorCode = "llm_provider_error"
	ErrorCodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Set for missing_field.
	Field string `json:"field,omitempty"`
	// Set for invalid_stage.
	Index *int `json:"index,omitempty"`
	// The model reply that failed validation, for synthesis errors.
	RawResponse string `json:"raw_response,omitempty"`
}

// SynthesizeRequest is the body of POST /api/v1/synthesize.
// With Execute set the synthesized query is also run for display and becomes
// the session's current query.
type SynthesizeRequest struct {
	Question string `json:"question"`
	Execute  bool   `json:"execute,omitempty"`
}

// SynthesizeResponse carries a validated query.
type SynthesizeResponse struct {
	Collection  string      `json:"collection"`
	Pipeline    value.Value `json:"pipeline"`
	Query       string      `json:"query"`
	RawResponse string      `json:"raw_response"`
	Tokens      int         `json:"tokens,omitempty"`

	Result *ExecuteResponse `json:"result,omitempty"`
}

// ExecuteRequest is the body of POST /api/v1/queries/execute. Query is either
// JSON text in a string or the pipeline/filter itself.
type ExecuteRequest struct {
	Collection string          `json:"collection"`
	Query      json.RawMessage `json:"query"`
}

// ExecuteResponse is a projected result page.
type ExecuteResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Notice  string     `json:"notice,omitempty"`
}

// SaveQueryRequest is the body of POST /api/v1/queries/saved.
type SaveQueryRequest struct {
	NaturalLanguage string          `json:"natural_language"`
	Collection      string          `json:"collection"`
	Query           json.RawMessage `json:"query"`
}

// SaveQueryResponse reports whether the query was new.
type SaveQueryResponse struct {
	Action string `json:"action"`
}

// SavedQuery is one premade query as listed.
type SavedQuery struct {
	ID              string `json:"id"`
	NaturalLanguage string `json:"natural_language"`
	Collection      string `json:"collection"`
	Query           string `json:"query"`
}

// SavedQueryListResponse lists premade queries.
type SavedQueryListResponse struct {
	Items []SavedQuery `json:"items"`
	Total int          `json:"total"`
}

// SchemaResponse is the catalog tree with its explanation.
type SchemaResponse struct {
	Schema      value.Value `json:"schema"`
	Explanation string      `json:"explanation"`
}

// ExampleItem is one built-in sample query.
type ExampleItem struct {
	NaturalLanguage string `json:"natural_language"`
	Collection      string `json:"collection"`
	Query           string `json:"query"`
	Difficulty      int    `json:"difficulty"`
}

// ExampleListResponse lists the built-in sample queries.
type ExampleListResponse struct {
	Items []ExampleItem `json:"items"`
}

// UsageMetrics counts completion traffic.
type UsageMetrics struct {
	CompletionRequests int64 `json:"completion_requests"`
	Tokens             int64 `json:"tokens"`
}

// BudgetStatus is the token budget state.
type BudgetStatus struct {
	TokensLimit     int64      `json:"tokens_limit"`
	TokensRemaining int64      `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

// UsageResponse is the body of GET /api/v1/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	Model         string       `json:"model,omitempty"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		synthesisErrorHandler,
		sentinelHandler(domain.ErrEmptyQuestion, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
		sentinelHandler(domain.ErrNoCurrentQuery, http.StatusNotFound, ErrorCodeNoCurrentQuery),
		sentinelHandler(domain.ErrNoResults, http.StatusNotFound, ErrorCodeNoResults),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrCompletionQuotaExceeded,
			http.StatusPaymentRequired, ErrorCodeCompletionQuotaExceeded),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, ErrorCodeLLMProviderError),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Synthesis and query errors keep their detail: it names the caller's own input.
func safeDomainMessage(err error) string {
	detailed := []error{
		domain.ErrMalformedSyntax,
		domain.ErrMissingField,
		domain.ErrInvalidStage,
		domain.ErrInvalidQuery,
	}
	for _, s := range detailed {
		if errors.Is(err, s) {
			return err.Error()
		}
	}

	sentinels := []error{
		domain.ErrEmptyQuestion,
		domain.ErrNoCurrentQuery,
		domain.ErrNoResults,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrCompletionQuotaExceeded,
		domain.ErrLLMProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// synthesisErrorHandler answers a rejected model reply with 422 and the
// field or stage position that failed.
func synthesisErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	body, ok := synthesisError(err, msg)
	if !ok {
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, body)
	return true
}

func synthesisError(err error, msg string) (ErrorResponse, bool) {
	var mfe *domain.MissingFieldError
	if errors.As(err, &mfe) {
		return ErrorResponse{Code: ErrorCodeMissingField, Message: msg, Field: mfe.Field}, true
	}
	var ise *domain.InvalidStageError
	if errors.As(err, &ise) {
		idx := ise.Index
		return ErrorResponse{Code: ErrorCodeInvalidStage, Message: msg, Index: &idx}, true
	}
	if errors.Is(err, domain.ErrMalformedSyntax) {
		return ErrorResponse{Code: ErrorCodeMalformedSyntax, Message: msg}, true
	}
	return ErrorResponse{}, false
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("Domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("Internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

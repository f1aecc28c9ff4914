package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/example"
	"github.com/kailas-cloud/plasmidq/internal/domain/query"
	"github.com/kailas-cloud/plasmidq/internal/domain/schema"
	domusage "github.com/kailas-cloud/plasmidq/internal/domain/usage"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
	"github.com/kailas-cloud/plasmidq/internal/logger"
	executionuc "github.com/kailas-cloud/plasmidq/internal/usecase/execution"
	healthuc "github.com/kailas-cloud/plasmidq/internal/usecase/health"
	savedqueryuc "github.com/kailas-cloud/plasmidq/internal/usecase/savedquery"
	synthesisuc "github.com/kailas-cloud/plasmidq/internal/usecase/synthesis"
	usageuc "github.com/kailas-cloud/plasmidq/internal/usecase/usage"
	"github.com/kailas-cloud/plasmidq/internal/version"
)

// maxBodyBytes caps request bodies; questions and queries are small.
const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers of the query API.
type Server struct {
	synthesis     *synthesisuc.Service
	execution     *executionuc.Service
	saved         *savedqueryuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	catalog       schema.Catalog
	logger        *zap.Logger
	errorHandlers []errorHandler
	now           func() time.Time
}

// NewServer creates an HTTP API server.
func NewServer(
	synthesis *synthesisuc.Service,
	execution *executionuc.Service,
	saved *savedqueryuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	catalog schema.Catalog,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		synthesis:     synthesis,
		execution:     execution,
		saved:         saved,
		usage:         usage,
		health:        health,
		catalog:       catalog,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
		now:           time.Now,
	}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r gochi.Router) {
		r.Post("/synthesize", s.Synthesize)
		r.Post("/queries/execute", s.ExecuteQuery)
		r.Delete("/queries/current", s.ResetCurrent)
		r.Get("/queries/current/export", s.ExportCurrent)
		r.Get("/queries/saved", s.ListSavedQueries)
		r.Post("/queries/saved", s.SaveQuery)
		r.Get("/schema", s.GetSchema)
		r.Get("/examples", s.ListExamples)
		r.Get("/usage", s.GetUsage)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// Synthesize handles POST /api/v1/synthesize.
func (s *Server) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.synthesis.Synthesize(ctx, req.Question)
	setCompletionHeaders(w, usage)
	if err != nil {
		if body, ok := synthesisError(err, safeDomainMessage(err)); ok {
			logger.FromContext(r.Context()).Info("Synthesis rejected", zap.String("code", string(body.Code)))
			body.RawResponse = res.RawReply
			writeJSON(w, http.StatusUnprocessableEntity, body)
			return
		}
		s.handleDomainError(w, r, err)
		return
	}

	resp := SynthesizeResponse{
		Collection:  res.Query.Collection,
		Pipeline:    res.Query.PipelineValue(),
		Query:       value.Indent(res.Query.Value(), "    "),
		RawResponse: res.RawReply,
		Tokens:      res.Tokens,
	}

	if req.Execute {
		var sid string
		r, sid = withSession(w, r)
		run, err := s.execution.Run(r.Context(), sid, query.FromValidated(res.Query))
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		resp.Result = &ExecuteResponse{Columns: run.Columns, Rows: run.Rows, Notice: run.Notice}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ExecuteQuery handles POST /api/v1/queries/execute.
func (s *Server) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	qr, err := query.ParseRequest(req.Collection, queryText(req.Query))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	r, sid := withSession(w, r)
	res, err := s.execution.Run(r.Context(), sid, qr)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ExecuteResponse{
		Columns: res.Columns,
		Rows:    res.Rows,
		Notice:  res.Notice,
	})
}

// ResetCurrent handles DELETE /api/v1/queries/current.
func (s *Server) ResetCurrent(w http.ResponseWriter, r *http.Request) {
	r, sid := withSession(w, r)
	if err := s.execution.Reset(r.Context(), sid); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportCurrent handles GET /api/v1/queries/current/export.
func (s *Server) ExportCurrent(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatCSV
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "format must be csv or xlsx")
		return
	}

	r, sid := withSession(w, r)
	header, records, err := s.execution.Export(r.Context(), sid)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var body []byte
	if format == FormatXLSX {
		body, err = encodeXLSX(header, records)
	} else {
		body, err = encodeCSV(header, records)
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+exportFilename(format, s.now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ListSavedQueries handles GET /api/v1/queries/saved.
func (s *Server) ListSavedQueries(w http.ResponseWriter, r *http.Request) {
	listed, err := s.saved.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SavedQuery, len(listed))
	for i, l := range listed {
		items[i] = SavedQuery{
			ID:              l.ID,
			NaturalLanguage: l.NaturalLanguage,
			Collection:      l.Collection,
			Query:           l.Query,
		}
	}
	writeJSON(w, http.StatusOK, SavedQueryListResponse{Items: items, Total: len(items)})
}

// SaveQuery handles POST /api/v1/queries/saved.
func (s *Server) SaveQuery(w http.ResponseWriter, r *http.Request) {
	var req SaveQueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	action, err := s.saved.Save(r.Context(), req.NaturalLanguage, req.Collection, queryText(req.Query))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if action == savedqueryuc.ActionInserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, SaveQueryResponse{Action: string(action)})
}

// GetSchema handles GET /api/v1/schema.
func (s *Server) GetSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SchemaResponse{
		Schema:      s.catalog.Tree(),
		Explanation: schema.Explanation,
	})
}

// ListExamples handles GET /api/v1/examples.
func (s *Server) ListExamples(w http.ResponseWriter, _ *http.Request) {
	samples := example.Samples()
	items := make([]ExampleItem, len(samples))
	for i, smp := range samples {
		items[i] = ExampleItem{
			NaturalLanguage: smp.NaturalLanguage,
			Collection:      smp.Collection,
			Query:           smp.Query,
			Difficulty:      smp.Difficulty,
		}
	}
	writeJSON(w, http.StatusOK, ExampleListResponse{Items: items})
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, ok := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "period must be day, month or total")
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := UsageResponse{
		Period: string(report.Period()),
		Model:  report.Model(),
		Usage: UsageMetrics{
			CompletionRequests: report.Metrics().CompletionRequests(),
			Tokens:             report.Metrics().Tokens(),
		},
		Budget: BudgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}

	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}

	if report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.String(),
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setCompletionHeaders(w http.ResponseWriter, usage *domain.LLMUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Completion-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryText accepts a query sent either as a JSON string holding the query
// text or as the JSON value itself.
func queryText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

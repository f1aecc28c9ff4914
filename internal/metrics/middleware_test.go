package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware("/metrics"))
	r.Post("/api/v1/synthesize", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"collection":"plasmids"}`))
	})
	r.Get("/api/v1/queries/current/export", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a,b\n", 1000)))
	})
	r.Get("/api/v1/queries/saved", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# scrape"))
	})
	return r
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/v1/synthesize", "200"))

	if rr := serve(r, "POST", "/api/v1/synthesize"); rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/v1/synthesize", "200"))
	if after-before != 1 {
		t.Errorf("requests_total delta = %v, want 1", after-before)
	}
	if n := testutil.CollectAndCount(httpRequestDuration); n == 0 {
		t.Error("expected a duration series")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/queries/saved", "404"))

	serve(r, "GET", "/api/v1/queries/saved")

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/queries/saved", "404"))
	if after-before != 1 {
		t.Errorf("404 delta = %v, want 1", after-before)
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404"))

	serve(r, "GET", "/wp-admin/setup.php")
	serve(r, "GET", "/api/v1/nope")

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404"))
	if after-before != 2 {
		t.Errorf("unmatched delta = %v, want 2", after-before)
	}
}

func TestMiddleware_SkipsScrapes(t *testing.T) {
	r := newRouter()

	if rr := serve(r, "GET", "/metrics"); rr.Body.String() != "# scrape" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/metrics", "200")); got != 0 {
		t.Errorf("scrape was recorded: %v", got)
	}
}

func TestStatusWriter_CountsBytes(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	_, _ = w.Write([]byte("query_results"))
	_, _ = w.Write([]byte(".csv"))
	w.WriteHeader(http.StatusTeapot) // after the body: ignored

	if w.bytes != len("query_results.csv") {
		t.Errorf("bytes = %d", w.bytes)
	}
	if w.status != http.StatusOK {
		t.Errorf("status = %d, want 200", w.status)
	}
}

func TestRouteLabel(t *testing.T) {
	if got := routeLabel(nil); got != unmatchedRoute {
		t.Errorf("nil context: %q", got)
	}
	rc := chi.NewRouteContext()
	if got := routeLabel(rc); got != unmatchedRoute {
		t.Errorf("empty pattern: %q", got)
	}
	rc.RoutePatterns = []string{"/api/v1/*", "/schema"}
	if got := routeLabel(rc); got != "/api/v1/schema" {
		t.Errorf("pattern: %q", got)
	}
}

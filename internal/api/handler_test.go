package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/api-routes/internal/docpage"
	"github.com/eugenenazirov/api-routes/internal/metrics"
	"github.com/eugenenazirov/api-routes/internal/routes"
	"github.com/eugenenazirov/api-routes/internal/storage"
)

var fixedNow = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

const testRoutesJSON = `[
	{"group":"mcp","routes":[
		{"path":"key","response":"abc"},
		{"path":"config","response":{"enabled":true,"timeout":30}},
		{"path":"limit","response":42},
		{"path":"flag","response":false}
	]},
	{"group":"database","routes":[{"path":"username","response":"admin"}]}
]`

func setupTestRouter(t *testing.T, opts ...HandlerOption) (http.Handler, *storage.MemoryStorage) {
	t.Helper()

	cfg, err := routes.Parse(testRoutesJSON)
	if err != nil {
		t.Fatalf("parse test routes: %v", err)
	}
	store := storage.NewMemoryStorage(cfg)

	page, err := docpage.New()
	if err != nil {
		t.Fatalf("docpage.New returned error: %v", err)
	}

	opts = append([]HandlerOption{
		WithClock(func() time.Time { return fixedNow }),
		WithDocPage(page),
		WithHandlerLogger(zaptest.NewLogger(t)),
	}, opts...)
	handler := NewHandler(store, opts...)
	logger := zaptest.NewLogger(t)
	router := NewRouter(handler, logger, WithLogging(false))

	return router, store
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	if got := requestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := get(t, router, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(fixedNow) {
		t.Fatalf("expected timestamp %s, got %s", fixedNow, body.Timestamp)
	}
}

func TestResolveEndpointReturnsData(t *testing.T) {
	router, _ := setupTestRouter(t)

	tests := []struct {
		target string
		want   string
	}{
		{target: "/api/mcp/key", want: `{"data":"abc"}`},
		{target: "/api/mcp/config", want: `{"data":{"enabled":true,"timeout":30}}`},
		{target: "/api/mcp/limit", want: `{"data":42}`},
		{target: "/api/mcp/flag", want: `{"data":false}`},
		{target: "/api/database/username", want: `{"data":"admin"}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.target, func(t *testing.T) {
			rec := get(t, router, tc.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tc.want {
				t.Fatalf("expected body %s, got %s", tc.want, got)
			}
			if rec.Header().Get("Content-Type") != "application/json" {
				t.Fatalf("expected JSON content type, got %q", rec.Header().Get("Content-Type"))
			}
			if rec.Header().Get("Cache-Control") != "no-store" {
				t.Fatalf("expected no-store cache control")
			}
		})
	}
}

func TestResolveEndpointNotFound(t *testing.T) {
	m := metrics.New()
	router, _ := setupTestRouter(t, WithLookupMetrics(m))

	for _, target := range []string{"/api/mcp/missing", "/api/other/key", "/api/MCP/key"} {
		rec := get(t, router, target)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status 404, got %d", target, rec.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body["error"] != routes.ErrNotFound.Error() || len(body) != 1 {
			t.Fatalf("%s: unexpected error body %v", target, body)
		}
	}

	if got := lookupCount(t, m, metrics.OutcomeRouteNotFound); got != 1 {
		t.Fatalf("expected 1 route_not_found lookup, got %v", got)
	}
	if got := lookupCount(t, m, metrics.OutcomeGroupNotFound); got != 2 {
		t.Fatalf("expected 2 group_not_found lookups, got %v", got)
	}
}

func lookupCount(t *testing.T, m *metrics.Metrics, outcome string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "apiroutes_lookups_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestResolveEndpointServesSwappedTable(t *testing.T) {
	router, store := setupTestRouter(t)

	if err := store.SetRoutes(routes.Default()); err != nil {
		t.Fatalf("SetRoutes returned error: %v", err)
	}

	if rec := get(t, router, "/api/mcp/key"); strings.TrimSpace(rec.Body.String()) != `{"data":"这是key的响应值"}` {
		t.Fatalf("expected the default table to be served, got %s", rec.Body.String())
	}
	if rec := get(t, router, "/api/database/username"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected removed group to be gone, got %d", rec.Code)
	}
}

func TestDocEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := get(t, router, "/api/doc")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Data routes.Documentation `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(body.Data.Endpoints) != 5 {
		t.Fatalf("expected 5 endpoints, got %d", len(body.Data.Endpoints))
	}
	if ep := body.Data.Endpoints[1]; ep.URL != "/api/mcp/config" || ep.ResponseType != "object" {
		t.Fatalf("unexpected endpoint %+v", ep)
	}
	if len(body.Data.Groups) != 2 || body.Data.Groups[0].RouteCount != 4 || body.Data.Groups[1].Name != "database" {
		t.Fatalf("unexpected groups %+v", body.Data.Groups)
	}
	if body.Data.ConfigFormat.Example == "" {
		t.Fatalf("expected configuration example")
	}
}

func TestDocPage(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := get(t, router, "/doc")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected HTML content type, got %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "/api/database/username") {
		t.Fatalf("expected page to list configured endpoints")
	}
}

func TestDocPageDisabled(t *testing.T) {
	router, _ := setupTestRouter(t, WithDocPage(nil))

	if rec := get(t, router, "/doc"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a documentation page, got %d", rec.Code)
	}
}

func TestResolveEndpointDecodesSegments(t *testing.T) {
	cfg, err := routes.Parse(`[{"group":"mcp","routes":[{"path":"a/b","response":"slash"},{"path":"sp ace","response":"space"}]},{"group":"x/y","routes":[{"path":"z","response":"nested"}]}]`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	router := NewRouter(NewHandler(storage.NewMemoryStorage(cfg)), zaptest.NewLogger(t), WithLogging(false))

	tests := []struct {
		target string
		want   string
	}{
		{target: "/api/mcp/a%2Fb", want: `{"data":"slash"}`},
		{target: "/api/mcp/sp%20ace", want: `{"data":"space"}`},
		{target: "/api/x%2Fy/z", want: `{"data":"nested"}`},
	}
	for _, tt := range tests {
		rec := get(t, router, tt.target)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d: %s", tt.target, rec.Code, rec.Body.String())
		}
		if got := strings.TrimSpace(rec.Body.String()); got != tt.want {
			t.Fatalf("unexpected body for %s: %s", tt.target, got)
		}
	}

	for _, ep := range routes.GenerateDocs(cfg).Endpoints {
		if rec := get(t, router, ep.URL); rec.Code != http.StatusOK {
			t.Fatalf("documented endpoint %s returned %d", ep.URL, rec.Code)
		}
	}

	if rec := get(t, router, "/api/mcp/a/b"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected unescaped slash to miss, got %d", rec.Code)
	}
}

func TestUnknownPathAndMethod(t *testing.T) {
	router, _ := setupTestRouter(t)

	for _, target := range []string{"/api/mcp/key/extra", "/api/mcp/key/", "/api/mcp", "/api"} {
		rec := get(t, router, target)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", target, rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"API route not found"}` {
			t.Fatalf("unexpected body for %s: %s", target, got)
		}
	}

	if got := strings.TrimSpace(get(t, router, "/elsewhere").Body.String()); got != `{"error":"Not found"}` {
		t.Fatalf("unexpected body outside /api: %s", got)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/mcp/key", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST, got %d", rec.Code)
	}
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/mcp/key", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header to be set")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-request-id" {
		t.Fatalf("expected X-Request-ID header to be echoed, got %s", got)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := get(t, router, "/api/health")
	if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Fatalf("expected a generated UUID request id, got %q", got)
	}
}

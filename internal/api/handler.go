package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/eugenenazirov/api-routes/internal/docpage"
	"github.com/eugenenazirov/api-routes/internal/metrics"
	"github.com/eugenenazirov/api-routes/internal/routes"
	"github.com/eugenenazirov/api-routes/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the route table and its documentation into HTTP handlers.
type Handler struct {
	storage storage.Storage
	page    *docpage.Page
	metrics *metrics.Metrics
	logger  *zap.Logger

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithDocPage enables the HTML documentation page.
func WithDocPage(page *docpage.Page) HandlerOption {
	return func(h *Handler) {
		h.page = page
	}
}

// WithLookupMetrics records lookup outcomes on m.
func WithLookupMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithHandlerLogger sets the logger used for lookup diagnostics.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler serving the table held by store.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage: store,
		logger:  zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	group, gerr := url.PathUnescape(vars["group"])
	path, perr := url.PathUnescape(vars["type"])
	if gerr != nil || perr != nil {
		h.metrics.ObserveLookup(metrics.OutcomeRouteNotFound)
		writeError(w, http.StatusNotFound, routes.ErrNotFound.Error())
		return
	}

	value, err := h.storage.Routes().Resolve(group, path)
	if err != nil {
		outcome := metrics.OutcomeRouteNotFound
		if errors.Is(err, routes.ErrGroupNotFound) {
			outcome = metrics.OutcomeGroupNotFound
		}
		h.metrics.ObserveLookup(outcome)
		h.logger.Debug("route lookup missed",
			zap.String("group", group),
			zap.String("type", path),
			zap.String("outcome", outcome),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
		writeError(w, http.StatusNotFound, routes.ErrNotFound.Error())
		return
	}

	h.metrics.ObserveLookup(metrics.OutcomeFound)
	writeJSON(w, http.StatusOK, dataResponse{Data: value})
}

func (h *Handler) handleDoc(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, dataResponse{Data: routes.GenerateDocs(h.storage.Routes())})
}

func (h *Handler) handleDocPage(w http.ResponseWriter, r *http.Request) {
	if h.page == nil {
		http.NotFound(w, r)
		return
	}

	html, err := h.page.Render(routes.GenerateDocs(h.storage.Routes()))
	if err != nil {
		h.logger.Error("failed to render documentation page", zap.Error(err))
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, routes.ErrNotFound.Error())
		return
	}
	writeError(w, http.StatusNotFound, "Not found")
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed", r.Method+" is not supported for this path")
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type dataResponse struct {
	Data any `json:"data"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	resp := errorResponse{
		Error: message,
	}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/api-routes/internal/api"
	"github.com/eugenenazirov/api-routes/internal/config"
	"github.com/eugenenazirov/api-routes/internal/docpage"
	"github.com/eugenenazirov/api-routes/internal/metrics"
	"github.com/eugenenazirov/api-routes/internal/routes"
	"github.com/eugenenazirov/api-routes/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	cfg     config.Config
	storage *storage.MemoryStorage
	metrics *metrics.Metrics
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	page, err := docpage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare documentation page: %w", err)
	}

	app := &App{
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
	initial := app.loadRoutes().Config
	app.storage = storage.NewMemoryStorage(initial)
	m.SetTableSize(initial.GroupCount(), initial.RouteCount())

	app.handler = api.NewHandler(app.storage,
		api.WithDocPage(page),
		api.WithLookupMetrics(m),
		api.WithHandlerLogger(logger),
	)
	app.router = api.NewRouter(app.handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithMetrics(m),
	)

	var metricsHandler http.Handler
	if m != nil {
		metricsHandler = m.Handler()
	}
	app.server = NewServer(cfg, BuildRootHandler(app.router, metricsHandler, cfg.HomeRedirect))

	return app, nil
}

// BuildRootHandler constructs the root HTTP handler: "/" redirects to
// homeRedirect, /metrics is served when metricsHandler is set, and every
// other path goes to the API router.
func BuildRootHandler(apiHandler, metricsHandler http.Handler, homeRedirect string) http.Handler {
	mux := http.NewServeMux()

	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && homeRedirect != "" && r.Method == http.MethodGet {
			http.Redirect(w, r, homeRedirect, http.StatusFound)
			return
		}
		apiHandler.ServeHTTP(w, r)
	}))

	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Routes returns the route table currently served.
func (a *App) Routes() *routes.Configuration {
	return a.storage.Routes()
}

// Reload reads the routes file again and serves the result. A rejected
// file keeps the current table in place and is reported as an error.
// Inline sources (API_ROUTES_CONFIG or --routes) are fixed at startup, so
// without a routes file Reload leaves the table untouched.
func (a *App) Reload() error {
	if a.cfg.RoutesFile == "" {
		a.logger.Info("route reload skipped: no routes file configured")
		return nil
	}
	res := a.loadRoutes()
	if res.Fallback {
		return fmt.Errorf("reload routes: keeping current table: %w", res.Err)
	}
	if err := a.storage.SetRoutes(res.Config); err != nil {
		return fmt.Errorf("reload routes: %w", err)
	}
	a.metrics.SetTableSize(res.Config.GroupCount(), res.Config.RouteCount())
	return nil
}

func (a *App) loadRoutes() routes.LoadResult {
	res := routes.Load(a.cfg.RoutesSource(), a.logger)
	a.metrics.ObserveConfigLoad(res.Requested, res.Fallback)
	a.logger.Info("route table loaded",
		zap.String("origin", res.Origin),
		zap.String("requested", res.Requested),
		zap.Bool("fallback", res.Fallback),
		zap.Int("groups", res.Config.GroupCount()),
		zap.Int("routes", res.Config.RouteCount()),
	)
	return res
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/api-routes/internal/application"
	"github.com/eugenenazirov/api-routes/internal/config"
	"github.com/eugenenazirov/api-routes/internal/logging"
)

var signalNotify = signal.Notify

type reloader interface {
	Reload() error
}

func main() {
	kingpinApp := kingpin.New("api-routes", "API Routes - serves configured responses under /api/{group}/{type}")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	routesJSON := kingpinApp.Flag("routes", "Route table as JSON (overrides API_ROUTES_CONFIG)").String()
	routesFile := kingpinApp.Flag("routes-file", "Path to a JSON or YAML route table, reloaded on SIGHUP").String()
	logLevel := kingpinApp.Flag("log-level", "Log level: debug, info, warn or error").String()
	var metricsSet bool
	metricsFlag := kingpinApp.Flag("metrics", "Expose Prometheus metrics on /metrics").IsSetByUser(&metricsSet).Bool()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed per client (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		Port:       port,
		RoutesJSON: routesJSON,
		RoutesFile: routesFile,
		LogLevel:   logLevel,
	}

	if metricsSet {
		overrides.MetricsEnabled = metricsFlag
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	waitForSignals(app, app.Server(), cfg.ShutdownGracePeriod, logger)
}

// waitForSignals reloads routes on SIGHUP and shuts the server down on
// SIGINT or SIGTERM.
func waitForSignals(app reloader, server *http.Server, timeout time.Duration, logger *zap.Logger) {
	signals := make(chan os.Signal, 1)
	signalNotify(signals, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range signals {
		if sig != syscall.SIGHUP {
			break
		}
		logger.Info("reloading routes")
		if err := app.Reload(); err != nil {
			logger.Warn("route reload failed", zap.Error(err))
		}
	}

	shutdown(server, timeout, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

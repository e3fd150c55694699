package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/config"
	httpserver "github.com/rezkam/todos/internal/infrastructure/http"
	"github.com/rezkam/todos/internal/infrastructure/http/handler"
	"github.com/rezkam/todos/internal/infrastructure/observability"
	"github.com/rezkam/todos/internal/infrastructure/persistence"
)

// providerShutdownTimeout bounds flushing of telemetry on exit.
const providerShutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		// slog may not be initialized if config fails
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Root context for normal operation, cancelled on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration of the exporters comes from OTEL_* env vars
	otelCfg := observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	}

	lp, logger, err := observability.InitLogger(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer shutdownProvider("logger", lp.Shutdown)
	slog.SetDefault(logger)

	tp, err := observability.InitTracerProvider(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to init tracer provider: %w", err)
	}
	defer shutdownProvider("tracer", tp.Shutdown)

	mp, err := observability.InitMeterProvider(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to init meter provider: %w", err)
	}
	defer shutdownProvider("meter", mp.Shutdown)

	slog.InfoContext(ctx, "starting todos service",
		"env", cfg.Environment,
		"config_file", cfg.ConfigFile,
		"storage_driver", cfg.Storage.Driver)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(cfg.Observability.ServiceName)
	}

	store, err := persistence.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	slog.InfoContext(ctx, "storage initialized",
		"driver", cfg.Storage.Driver,
		"location", storageLocation(cfg.Storage))
	store = persistence.Instrument(store, cfg.Storage.Driver, metrics)

	svc := todo.NewService(store, todo.Config{})

	todoHandler, err := handler.NewTodoHandler(svc)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create todo handler: %w", err)
	}

	server := httpserver.NewAPIServer(todoHandler.Routes(), metrics, httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")
	case err := <-errResult:
		_ = store.Close()
		return err
	}

	// The root context is already cancelled, so cleanup gets a fresh deadline.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	newCleanup(shutdownCtx, server, store)()
	slog.InfoContext(shutdownCtx, "shutdown complete")
	return nil
}

// shutdownProvider flushes an OpenTelemetry provider with a bounded timeout
// so an unreachable collector cannot hang the exit path.
func shutdownProvider(name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), providerShutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown provider", "provider", name, "error", err)
	}
}

// storageLocation describes where the store lives without leaking credentials.
func storageLocation(cfg config.StorageConfig) string {
	switch cfg.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		return maskPassword(cfg.DSN)
	case config.DriverFS:
		return cfg.FSDir
	case config.DriverGCS:
		return "gs://" + cfg.GCSBucket
	default:
		return ""
	}
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		// If parsing fails, fall back to full redaction to be safe
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}

// Package persistence selects and decorates the configured todo store.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/config"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/infrastructure/observability"
	"github.com/rezkam/todos/internal/infrastructure/persistence/fs"
	"github.com/rezkam/todos/internal/infrastructure/persistence/gcs"
	"github.com/rezkam/todos/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/todos/internal/infrastructure/persistence/sqlite"
)

// Store is a todo.Repository that owns resources released by Close.
type Store interface {
	todo.Repository
	Close() error
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err = postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		})
	case config.DriverSQLite:
		store, err = sqlite.NewStore(ctx, cfg.DSN)
	case config.DriverFS:
		store, err = fs.NewStore(cfg.FSDir)
	case config.DriverGCS:
		store, err = gcs.NewStore(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
	}
	return store, nil
}

const tracerName = "github.com/rezkam/todos/internal/infrastructure/persistence"

// instrumented records a span and a duration histogram around every repository call.
type instrumented struct {
	next    Store
	driver  string
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// Instrument wraps store with tracing and, when metrics is non-nil, Prometheus timings.
func Instrument(store Store, driver config.Driver, metrics *observability.Metrics) Store {
	return &instrumented{
		next:    store,
		driver:  string(driver),
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

func (s *instrumented) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) {
	ctx, span := s.tracer.Start(ctx, "todos.store."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", s.driver)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	outcome := observability.OutcomeOK
	switch {
	case errors.Is(err, domain.ErrTodoNotFound):
		outcome = observability.OutcomeNotFound
	case err != nil:
		outcome = observability.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("todos.outcome", outcome))

	if s.metrics != nil {
		s.metrics.RecordStoreOperation(s.driver, operation, outcome, elapsed)
	}
}

func (s *instrumented) Insert(ctx context.Context, t *domain.Todo) (out *domain.Todo, err error) {
	s.observe(ctx, "insert", func(ctx context.Context) error {
		out, err = s.next.Insert(ctx, t)
		return err
	})
	return out, err
}

func (s *instrumented) FindAll(ctx context.Context) (out []*domain.Todo, err error) {
	s.observe(ctx, "find_all", func(ctx context.Context) error {
		out, err = s.next.FindAll(ctx)
		return err
	})
	return out, err
}

func (s *instrumented) FindByID(ctx context.Context, id string) (out *domain.Todo, err error) {
	s.observe(ctx, "find_by_id", func(ctx context.Context) error {
		out, err = s.next.FindByID(ctx, id)
		return err
	})
	return out, err
}

func (s *instrumented) FindByIDAndRemove(ctx context.Context, id string) (out *domain.Todo, err error) {
	s.observe(ctx, "find_by_id_and_remove", func(ctx context.Context) error {
		out, err = s.next.FindByIDAndRemove(ctx, id)
		return err
	})
	return out, err
}

func (s *instrumented) FindByIDAndUpdate(ctx context.Context, id string, update domain.TodoUpdate) (out *domain.Todo, err error) {
	s.observe(ctx, "find_by_id_and_update", func(ctx context.Context) error {
		out, err = s.next.FindByIDAndUpdate(ctx, id, update)
		return err
	})
	return out, err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}

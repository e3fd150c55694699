package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for migrations
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Pool defaults applied when DBConfig leaves a field at zero.
const (
	DefaultMaxConns        = 25
	DefaultMinConns        = 5
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultConnMaxIdleTime = 1 * time.Minute
)

// DBConfig holds PostgreSQL database connection configuration.
type DBConfig struct {
	DSN             string        // PostgreSQL connection string
	MaxConns        int           // Maximum open connections (default: 25)
	MinConns        int           // Minimum idle connections (default: 5)
	ConnMaxLifetime time.Duration // Connection max lifetime (default: 5min)
	ConnMaxIdleTime time.Duration // Connection max idle time (default: 1min)
}

// poolConfig parses the DSN and applies pool settings, falling back to defaults.
func (c DBConfig) poolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	cfg.MaxConns = int32(orDefault(c.MaxConns, DefaultMaxConns))
	cfg.MinConns = int32(orDefault(c.MinConns, DefaultMinConns))
	cfg.MaxConnLifetime = orDefault(c.ConnMaxLifetime, DefaultConnMaxLifetime)
	cfg.MaxConnIdleTime = orDefault(c.ConnMaxIdleTime, DefaultConnMaxIdleTime)
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}

	// Timestamps are compared and returned in UTC regardless of server settings.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET TIMEZONE='UTC'")
		return err
	}
	return cfg, nil
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// NewStoreWithConfig creates a new PostgreSQL store with the given configuration.
// It also runs migrations automatically.
func NewStoreWithConfig(ctx context.Context, cfg DBConfig) (*Store, error) {
	poolConfig, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	// goose needs database/sql, so migrations run on a short-lived connection first.
	if err := runMigrationsWithDSN(ctx, cfg.DSN); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewStore(pool), nil
}

// NewPostgresStore creates a PostgreSQL store with default connection pool settings.
func NewPostgresStore(ctx context.Context, connString string) (*Store, error) {
	return NewStoreWithConfig(ctx, DBConfig{DSN: connString})
}

func runMigrationsWithDSN(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.ErrorContext(ctx, "Failed to close migration database connection", "error", err)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		slog.InfoContext(ctx, "applied migration", "source", r.Source.Path, "duration_ms", r.Duration.Milliseconds())
	}
	return nil
}

// Package config assembles the server configuration from built-in
// per-environment defaults, an optional TOML file and environment variables,
// in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/rezkam/todos/internal/env"
)

// Environment selects a deployment profile.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvProduction  Environment = "production"
)

// DefaultConfigFile is read when TODOS_CONFIG_FILE is unset. A missing
// default file is not an error.
const DefaultConfigFile = "config.toml"

// Defaults that do not depend on the environment.
const (
	DefaultPort            = "3000"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultServiceName     = "todos"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Environment     Environment `env:"TODOS_ENV"`
	ConfigFile      string      `env:"TODOS_CONFIG_FILE"`
	Storage         StorageConfig
	HTTP            HTTPConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"TODOS_SHUTDOWN_TIMEOUT"`
}

// HTTPConfig holds HTTP server configuration.
// Zero values fall back to the HTTP server's own defaults.
type HTTPConfig struct {
	Host              string        `env:"TODOS_HTTP_HOST"`
	Port              string        `env:"PORT"`
	ReadTimeout       time.Duration `env:"TODOS_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"TODOS_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"TODOS_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"TODOS_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"TODOS_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"TODOS_HTTP_MAX_BODY_BYTES"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled    bool   `env:"TODOS_OTEL_ENABLED"`
	ServiceName    string `env:"OTEL_SERVICE_NAME"`
	MetricsEnabled bool   `env:"TODOS_METRICS_ENABLED"`
}

func (e Environment) validate() error {
	switch e {
	case EnvDevelopment, EnvTest, EnvProduction:
		return nil
	default:
		return fmt.Errorf("unknown TODOS_ENV %q: must be one of development, test, production", e)
	}
}

// Validate validates the top-level configuration.
func (c *ServerConfig) Validate() error {
	if err := c.Environment.validate(); err != nil {
		return err
	}
	if c.HTTP.Port == "" {
		return errors.New("PORT must not be empty")
	}
	return nil
}

// bootstrap holds the variables needed before the layered load can start.
type bootstrap struct {
	Environment Environment `env:"TODOS_ENV"`
	ConfigFile  string      `env:"TODOS_CONFIG_FILE"`
}

// LoadServerConfig loads and validates server configuration from the process environment.
func LoadServerConfig() (*ServerConfig, error) {
	return load(env.Load)
}

// LoadServerConfigFrom is LoadServerConfig with a custom variable lookup.
func LoadServerConfigFrom(lookup env.LookupFunc) (*ServerConfig, error) {
	return load(func(v any) error { return env.LoadFrom(v, lookup) })
}

func load(loadEnv func(any) error) (*ServerConfig, error) {
	boot := bootstrap{Environment: EnvDevelopment}
	if err := loadEnv(&boot); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := boot.Environment.validate(); err != nil {
		return nil, err
	}

	cfg := Defaults(boot.Environment)

	explicitFile := boot.ConfigFile != ""
	path := boot.ConfigFile
	if !explicitFile {
		path = DefaultConfigFile
	}
	if err := applyFile(cfg, path); err != nil {
		if explicitFile || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else {
		cfg.ConfigFile = path
	}

	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}

// Defaults returns the built-in configuration for environment.
func Defaults(environment Environment) *ServerConfig {
	cfg := &ServerConfig{
		Environment:     environment,
		HTTP:            HTTPConfig{Port: DefaultPort},
		ShutdownTimeout: DefaultShutdownTimeout,
		Observability: ObservabilityConfig{
			ServiceName:    DefaultServiceName,
			MetricsEnabled: true,
		},
		Storage: StorageConfig{FSDir: DefaultFSDir},
	}

	switch environment {
	case EnvDevelopment:
		cfg.Storage.Driver = DriverSQLite
		cfg.Storage.DSN = "file:todos.db"
	case EnvTest:
		cfg.Storage.Driver = DriverSQLite
		cfg.Storage.DSN = "file:todos-test.db?mode=memory&cache=shared"
	}

	return cfg
}

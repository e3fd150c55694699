package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
)

const (
	// DefaultServiceName is the default service name for observability when OTEL_SERVICE_NAME is not set.
	DefaultServiceName = "todos"

	exportTimeout = 10 * time.Second
)

// Config holds observability configuration.
type Config struct {
	Enabled     bool   // Whether OpenTelemetry is enabled
	ServiceName string // Service name for logging (defaults to DefaultServiceName if empty)
}

func (c Config) serviceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// dialOptions tags every OTLP connection with the service name as user agent.
func (c Config) dialOptions() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithUserAgent(c.serviceName())}
}

// newResource creates a resource with service metadata merged with defaults.
// Partial resource errors are non-fatal.
//
// OTEL_RESOURCE_ATTRIBUTES and OTEL_SERVICE_NAME override the configured name:
//
//	export OTEL_RESOURCE_ATTRIBUTES="service.version=1.0.0,deployment.environment=production"
func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	serviceResource, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.serviceName())),
		resource.WithFromEnv(),
		resource.WithSchemaURL(semconv.SchemaURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service resource: %w", err)
	}

	// Default resource carries the telemetry.sdk.* attributes.
	res, err := resource.Merge(
		resource.Default(),
		serviceResource,
	)
	if err != nil {
		if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
			return res, nil
		}
		return nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	return res, nil
}

// InitTracerProvider initializes an OTLP/gRPC tracer provider.
//
// Configuration via environment variables (standard OTEL env vars):
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector endpoint (e.g., http://localhost:4317)
//   - OTEL_EXPORTER_OTLP_INSECURE: disable TLS for local collectors
//   - OTEL_EXPORTER_OTLP_HEADERS: Auth headers (e.g., Authorization=Basic <base64-token>)
func InitTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		// Return a no-op provider that satisfies the interface
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Background context so exporter creation is not tied to startup cancellation.
	traceExporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithTimeout(exportTimeout),
		otlptracegrpc.WithDialOption(cfg.dialOptions()...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider, nil
}

// InitMeterProvider initializes an OTLP/gRPC meter provider with a 15s periodic reader.
func InitMeterProvider(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	if !cfg.Enabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		return mp, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	metricExporter, err := otlpmetricgrpc.New(context.Background(),
		otlpmetricgrpc.WithTimeout(exportTimeout),
		otlpmetricgrpc.WithDialOption(cfg.dialOptions()...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(15*time.Second),
		)),
	)

	otel.SetMeterProvider(meterProvider)

	return meterProvider, nil
}

// InitLogger initializes an OTLP/gRPC log provider and returns a structured logger
// bridged onto it. When disabled it returns a no-op provider and a JSON logger on stdout.
func InitLogger(ctx context.Context, cfg Config) (*log.LoggerProvider, *slog.Logger, error) {
	if !cfg.Enabled {
		return log.NewLoggerProvider(), slog.New(slog.NewJSONHandler(os.Stdout, nil)), nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	logExporter, err := otlploggrpc.New(context.Background(),
		otlploggrpc.WithTimeout(exportTimeout),
		otlploggrpc.WithDialOption(cfg.dialOptions()...),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	loggerProvider := log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(logExporter,
			log.WithExportTimeout(5*time.Second),
		)),
		log.WithResource(res),
	)

	logger := otelslog.NewLogger(cfg.serviceName(), otelslog.WithLoggerProvider(loggerProvider))

	return loggerProvider, logger, nil
}

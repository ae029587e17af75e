package observability

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TelemetryConfig describes the optional OTLP tracing pipeline.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Namespace   string
	Version     string
	Commit      string
	Environment string
}

// TelemetryShutdown flushes and tears down the tracing pipeline.
type TelemetryShutdown func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// previousGlobals snapshots the otel globals so shutdown can put them back.
type previousGlobals struct {
	tracerProvider trace.TracerProvider
	propagator     propagation.TextMapPropagator
	errorHandler   otel.ErrorHandler
}

func snapshotGlobals() previousGlobals {
	return previousGlobals{
		tracerProvider: otel.GetTracerProvider(),
		propagator:     otel.GetTextMapPropagator(),
		errorHandler:   otel.GetErrorHandler(),
	}
}

func (p previousGlobals) restore() {
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(p.propagator)
	otel.SetErrorHandler(p.errorHandler)
}

// SetupTelemetry installs the OTLP tracing pipeline as the global otel
// provider. Disabled or nil config leaves the globals untouched and
// returns a noop shutdown.
func SetupTelemetry(ctx context.Context, cfg *TelemetryConfig) (TelemetryShutdown, error) {
	if cfg == nil || !cfg.Enabled {
		return noopShutdown, nil
	}

	prev := snapshotGlobals()

	res, err := buildResource(cfg)
	if err != nil {
		return noopShutdown, err
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return noopShutdown, fmt.Errorf("create otel exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Export failures must never reach stderr, which may carry prompts.
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(error) {}))

	return func(shutdownCtx context.Context) error {
		err := provider.Shutdown(shutdownCtx)
		prev.restore()
		if err != nil {
			return fmt.Errorf("shutdown otel provider: %w", err)
		}
		return nil
	}, nil
}

func buildResource(cfg *TelemetryConfig) (*resource.Resource, error) {
	serviceName := firstNonEmpty(cfg.ServiceName, os.Getenv("OTEL_SERVICE_NAME"), "nautex")
	namespace := firstNonEmpty(cfg.Namespace, "nautex")
	environment := firstNonEmpty(cfg.Environment, os.Getenv("OTEL_ENVIRONMENT"), "development")

	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", cfg.Version),
		attribute.String("service.namespace", namespace),
		attribute.String("deployment.environment", environment),
	}
	if cfg.Commit != "" {
		attrs = append(attrs, attribute.String("service.commit", cfg.Commit))
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
	if err != nil {
		return nil, fmt.Errorf("merge otel resource: %w", err)
	}
	return res, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}

// IsTelemetryEnabled checks the OTEL_ENABLED env var.
func IsTelemetryEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_ENABLED"))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

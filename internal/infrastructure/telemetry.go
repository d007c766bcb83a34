package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Telemetry owns the tracer and meter used across the scheduler.
// When disabled both come from the global noop providers.
type Telemetry struct {
	TracerProvider     *sdktrace.TracerProvider
	MeterProvider      *sdkmetric.MeterProvider
	PrometheusExporter *prometheus.Exporter
	Tracer             trace.Tracer
	Meter              metric.Meter
	config             *TelemetryConfig
	logger             *zap.Logger
}

// TelemetryMetrics holds the instruments recorded by the scheduler
type TelemetryMetrics struct {
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestCount    metric.Int64Counter
	SubmissionsIngested metric.Int64Counter
	ProblemsDue         metric.Int64Gauge
	ProblemsMastered    metric.Int64Gauge
	BackupWrites        metric.Int64Counter
}

// NewTelemetry sets up OTLP tracing and Prometheus metrics and installs them
// as the global providers
func NewTelemetry(ctx context.Context, config *TelemetryConfig, logger *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{config: config, logger: logger}

	if !config.Enabled {
		logger.Info("Telemetry disabled, using noop providers")
		t.Tracer = otel.Tracer(config.ServiceName)
		t.Meter = otel.Meter(config.ServiceName)
		return t, nil
	}

	res, err := newResource(config)
	if err != nil {
		return nil, err
	}

	t.TracerProvider, err = newTracerProvider(ctx, config, res)
	if err != nil {
		return nil, err
	}

	t.PrometheusExporter, err = prometheus.New()
	if err != nil {
		_ = t.TracerProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(t.PrometheusExporter),
	)

	otel.SetTracerProvider(t.TracerProvider)
	otel.SetMeterProvider(t.MeterProvider)

	t.Tracer = t.TracerProvider.Tracer(config.ServiceName)
	t.Meter = t.MeterProvider.Meter(config.ServiceName)

	logger.Info("Telemetry initialized",
		zap.String("service", config.ServiceName),
		zap.String("version", config.ServiceVersion),
		zap.String("otlp_endpoint", config.OTLPEndpoint),
		zap.Float64("sample_ratio", config.SampleRatio),
	)
	return t, nil
}

func newResource(config *TelemetryConfig) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

func newTracerProvider(ctx context.Context, config *TelemetryConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(config.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
		),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(config.SampleRatio),
		)),
	), nil
}

// CreateMetrics registers every instrument on the telemetry meter
func (t *Telemetry) CreateMetrics() (*TelemetryMetrics, error) {
	var (
		m   TelemetryMetrics
		err error
	)

	if m.HTTPRequestDuration, err = t.Meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestCount, err = t.Meter.Int64Counter(
		"http.request.count",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.SubmissionsIngested, err = t.Meter.Int64Counter(
		"submissions.ingested",
		metric.WithDescription("Accepted submissions processed, by outcome"),
	); err != nil {
		return nil, err
	}
	if m.ProblemsDue, err = t.Meter.Int64Gauge(
		"problems.due",
		metric.WithDescription("Problems currently past their review interval"),
	); err != nil {
		return nil, err
	}
	if m.ProblemsMastered, err = t.Meter.Int64Gauge(
		"problems.mastered",
		metric.WithDescription("Problems in the terminal stage"),
	); err != nil {
		return nil, err
	}
	if m.BackupWrites, err = t.Meter.Int64Counter(
		"backup.writes",
		metric.WithDescription("Backup file writes, by result"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// Shutdown flushes pending spans and stops both providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			t.logger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			t.logger.Error("Failed to shutdown meter provider", zap.Error(err))
		}
	}
	t.logger.Info("Telemetry shutdown complete")
	return nil
}

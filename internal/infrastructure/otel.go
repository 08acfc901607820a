package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"marketdesk/internal/config"
)

const (
	ServiceName = "marketdesk"
	MeterName   = "marketdesk"
)

// OTelConfig selects the telemetry exporters
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are
// never nil; the providers are nil when their exporter is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// NewOTelConfig maps the telemetry section of the application config
func NewOTelConfig(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: config.AppVersion,
		Environment:    cfg.Environment,
		TraceExporter:  cfg.TraceExporter,
		MetricExporter: cfg.MetricExporter,
		SampleRatio:    cfg.SampleRatio,
	}
}

// InitializeOTel sets up tracing and metrics and installs them globally.
// Each call with the prometheus exporter gets its own registry, served by
// PrometheusHTTP.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = NewOTelConfig(config.Default().Telemetry)
	}
	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		semconv.ServiceInstanceID(uuid.NewString()),
	)

	p := &OTelProviders{
		Logger: logger,
		Tracer: otel.Tracer(MeterName),
		Meter:  otel.Meter(MeterName),
	}

	if err := p.startTracing(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := p.startMetrics(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

func (p *OTelProviders) startTracing(cfg *OTelConfig, res *resource.Resource) error {
	switch cfg.TraceExporter {
	case "none", "":
		return nil
	case "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	p.TracerProvider = tp
	p.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	p.Logger.Info("Tracing initialized", slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

func (p *OTelProviders) startMetrics(cfg *OTelConfig, res *resource.Resource) error {
	switch cfg.MetricExporter {
	case "none", "":
		return nil
	case "prometheus":
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	p.MeterProvider = mp
	p.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	p.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(p.Logger.Handler(), slog.LevelWarn),
	})
	p.Logger.Info("Metrics initialized", slog.String("exporter", cfg.MetricExporter))
	return nil
}

// Shutdown flushes and stops whichever providers were started
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// TraceIDFromContext returns the id of the span in ctx, or "" without one
func TraceIDFromContext(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// RecordError marks the span in ctx as failed
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// BusinessMetrics holds the instruments shared by the HTTP middleware,
// the registry loader and the view services
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	RegistryLoadDuration metric.Float64Histogram
	RegistryPoints       metric.Int64Gauge
	RegistryFiles        metric.Int64Gauge

	ViewBuildsTotal   metric.Int64Counter
	ViewBuildDuration metric.Float64Histogram
	ViewErrors        metric.Int64Counter
	ViewMissingValues metric.Int64Counter
}

// instruments creates meter instruments, keeping the first error
type instruments struct {
	meter metric.Meter
	err   error
}

func (in *instruments) counter(name, desc string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc))
	in.err = errors.Join(in.err, err)
	return c
}

func (in *instruments) seconds(name, desc string) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	in.err = errors.Join(in.err, err)
	return h
}

func (in *instruments) gauge(name, desc string) metric.Int64Gauge {
	g, err := in.meter.Int64Gauge(name, metric.WithDescription(desc))
	in.err = errors.Join(in.err, err)
	return g
}

// CreateBusinessMetrics registers every application instrument on meter
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	in := &instruments{meter: meter}

	active, err := meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"))
	in.err = errors.Join(in.err, err)

	m := &BusinessMetrics{
		HTTPRequestsTotal:   in.counter("http_requests_total", "Total number of HTTP requests"),
		HTTPRequestDuration: in.seconds("http_request_duration_seconds", "HTTP request duration in seconds"),
		HTTPActiveRequests:  active,

		RegistryLoadDuration: in.seconds("registry_load_duration_seconds", "Time spent parsing all datasets"),
		RegistryPoints:       in.gauge("registry_points", "Observations loaded per dataset"),
		RegistryFiles:        in.gauge("registry_files", "Source files loaded per dataset"),

		ViewBuildsTotal:   in.counter("view_builds_total", "Total number of view builds"),
		ViewBuildDuration: in.seconds("view_build_duration_seconds", "View build duration in seconds"),
		ViewErrors:        in.counter("view_errors_total", "Total number of failed view builds"),
		ViewMissingValues: in.counter("view_missing_values_total", "Cells rendered as missing because no aligned value existed"),
	}
	if in.err != nil {
		return nil, in.err
	}
	return m, nil
}

// RecordRegistryMetrics records the outcome of loading one dataset
func RecordRegistryMetrics(ctx context.Context, metrics *BusinessMetrics, dataset string, files, points int, duration time.Duration) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("dataset", dataset))
	metrics.RegistryFiles.Record(ctx, int64(files), attrs)
	metrics.RegistryPoints.Record(ctx, int64(points), attrs)
	metrics.RegistryLoadDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordViewMetrics records one view build. A failed build is also
// recorded on the request span.
func RecordViewMetrics(ctx context.Context, metrics *BusinessMetrics, view string, duration time.Duration, missing int, err error) {
	RecordError(ctx, err)
	if metrics == nil {
		return
	}

	viewAttr := attribute.String("view", view)
	status := "success"
	if err != nil {
		status = "failure"
	}

	metrics.ViewBuildsTotal.Add(ctx, 1, metric.WithAttributes(viewAttr))
	metrics.ViewBuildDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(viewAttr, attribute.String("status", status)))

	if missing > 0 {
		metrics.ViewMissingValues.Add(ctx, int64(missing), metric.WithAttributes(viewAttr))
	}
	if err != nil {
		metrics.ViewErrors.Add(ctx, 1,
			metric.WithAttributes(viewAttr, attribute.String("error.type", fmt.Sprintf("%T", err))))
	}

	trace.SpanFromContext(ctx).AddEvent("view.built", trace.WithAttributes(
		viewAttr,
		attribute.Int("missing", missing),
		attribute.Float64("duration_seconds", duration.Seconds()),
	))
}

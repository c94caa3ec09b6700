package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docuchat/auth-service/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

type appMetrics struct {
	authAttempts       metric.Int64Counter
	authReqDuration    metric.Float64Histogram
	validationFailures metric.Int64Counter
	rateLimitDecisions metric.Int64Counter
	healthCheckResults metric.Int64Counter
}

var (
	metricsMu sync.RWMutex
	current   *appMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("docuchat-auth-service")
	attempts, err := meter.Int64Counter("auth.attempts")
	if err != nil {
		return nil, err
	}
	reqDuration, err := meter.Float64Histogram("auth.request.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	validationFails, err := meter.Int64Counter("auth.validation.failures")
	if err != nil {
		return nil, err
	}
	rateLimit, err := meter.Int64Counter("http.rate_limit.decisions")
	if err != nil {
		return nil, err
	}
	healthResults, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	current = &appMetrics{
		authAttempts:       attempts,
		authReqDuration:    reqDuration,
		validationFailures: validationFails,
		rateLimitDecisions: rateLimit,
		healthCheckResults: healthResults,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint, "interval", cfg.OTELMetricsExportInterval.String())
	return mp, nil
}

func load() *appMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return current
}

// RecordAuthAttempt counts one register/login/reset_password outcome.
func RecordAuthAttempt(ctx context.Context, operation, status string) {
	m := load()
	if m == nil {
		return
	}
	m.authAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

func RecordAuthRequestDuration(ctx context.Context, operation, status string, duration time.Duration) {
	m := load()
	if m == nil {
		return
	}
	m.authReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// RecordValidationFailure counts one rejected request body per operation.
func RecordValidationFailure(ctx context.Context, operation string) {
	m := load()
	if m == nil {
		return
	}
	m.validationFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome string) {
	m := load()
	if m == nil {
		return
	}
	m.rateLimitDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := load()
	if m == nil {
		return
	}
	m.healthCheckResults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

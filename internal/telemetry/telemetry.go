package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/config"
	"github.com/Mehdichaaki/dashbord/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func InitMeterProvider(ctx context.Context, endpoint, serviceName, serviceVersion string, logger *slog.Logger) (*metric.MeterProvider, error) {
	logger.Info("initializing OTel metrics", "endpoint", endpoint)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExporter,
			metric.WithInterval(10*time.Second))),
	)

	otel.SetMeterProvider(meterProvider)
	logger.Info("OTel metrics initialized successfully")

	return meterProvider, nil
}

type Telemetry struct {
	// MeterProvider is nil when export is disabled; meters then come from
	// the global no-op provider.
	MeterProvider *metric.MeterProvider
	Metrics       *metrics.Metrics

	meter otelmetric.Meter
}

func Init(ctx context.Context, cfg config.TelemetryConfig, serviceName, serviceVersion string, logger *slog.Logger) (*Telemetry, error) {
	t := &Telemetry{}

	if cfg.Enabled {
		mp, err := InitMeterProvider(ctx, cfg.OTLPEndpoint, serviceName, serviceVersion, logger)
		if err != nil {
			return nil, err
		}
		t.MeterProvider = mp
	} else {
		logger.Info("OTel metrics export disabled")
	}

	t.meter = otel.Meter(serviceName)
	m, err := metrics.New(t.meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	t.Metrics = m

	return t, nil
}

// RegisterDB starts observing the connection pool of db.
func (t *Telemetry) RegisterDB(db *sql.DB) error {
	return t.Metrics.Database.RegisterDB(db, t.meter)
}

func (t *Telemetry) Shutdown(ctx context.Context, logger *slog.Logger) error {
	if t == nil || t.MeterProvider == nil {
		return nil
	}
	logger.Info("shutting down OTel meter provider")
	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Package telemetry sets up the OpenTelemetry meter provider and the
// application metrics built on top of it.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"college-erp/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Telemetry struct {
	MeterProvider *sdkmetric.MeterProvider
	Metrics       *metrics.Metrics
}

// Init builds the OTLP meter provider and the app metrics. When
// OTEL_EXPORTER_OTLP_ENDPOINT is unset the provider is skipped and metrics
// fall back to the global (noop) meter, so local runs need no collector.
func Init(ctx context.Context, serviceName, serviceVersion string, logger *slog.Logger) (*Telemetry, error) {
	var meterProvider *sdkmetric.MeterProvider

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint != "" {
		logger.Info("initializing OTel metrics", "endpoint", otelEndpoint)

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
			otlpmetricgrpc.WithEndpoint(otelEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}

		meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
				sdkmetric.WithInterval(10*time.Second))),
		)

		otel.SetMeterProvider(meterProvider)
		logger.Info("OTel metrics initialized successfully")
	} else {
		logger.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, metrics export disabled")
	}

	m, err := metrics.New(otel.Meter(serviceName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return &Telemetry{
		MeterProvider: meterProvider,
		Metrics:       m,
	}, nil
}

// Shutdown flushes pending metrics. Safe to call when export was disabled.
func (t *Telemetry) Shutdown(ctx context.Context, logger *slog.Logger) error {
	if t.MeterProvider == nil {
		return nil
	}
	logger.Info("shutting down OTel meter provider")
	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

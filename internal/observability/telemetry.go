package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ShutdownFunc flushes and stops whatever a Start call installed.
type ShutdownFunc func(context.Context) error

// StartTelemetry installs OTLP/HTTP trace, metric and log pipelines for
// serviceName as the otel globals and tees Logger into the log pipeline.
// Exporter endpoints come from the OTEL_EXPORTER_OTLP_* environment
// variables. Call after InitLogger.
func StartTelemetry(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	var stops []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(stops) - 1; i >= 0; i-- {
			errs = append(errs, stops[i](ctx))
		}
		return errors.Join(errs...)
	}

	pipelines := []struct {
		name  string
		start func(context.Context, *resource.Resource) (ShutdownFunc, error)
	}{
		{"traces", startTracing},
		{"metrics", startMetrics},
		{"logs", func(ctx context.Context, res *resource.Resource) (ShutdownFunc, error) {
			return startLogging(ctx, res, serviceName)
		}},
	}
	for _, p := range pipelines {
		stop, err := p.start(ctx, res)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("start %s pipeline: %w", p.name, err)
		}
		stops = append(stops, stop)
	}

	return shutdown, nil
}

func startTracing(ctx context.Context, res *resource.Resource) (ShutdownFunc, error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
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

	return provider.Shutdown, nil
}

func startMetrics(ctx context.Context, res *resource.Resource) (ShutdownFunc, error) {
	exporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// startLogging swaps Logger for one that also writes to the OTLP log
// exporter. The previous core keeps receiving every entry.
func startLogging(ctx context.Context, res *resource.Resource, serviceName string) (ShutdownFunc, error) {
	exporter, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	previous := Logger
	Logger = zap.New(zapcore.NewTee(
		previous.Core(),
		otelzap.NewCore(serviceName, otelzap.WithLoggerProvider(provider)),
	))

	return func(ctx context.Context) error {
		Logger = previous
		return provider.Shutdown(ctx)
	}, nil
}

package main

import (
	"context"
	"errors"

	"calculator-api/internal/calculator"
	"calculator-api/internal/config"
	"calculator-api/internal/observability"
	"calculator-api/internal/session"
)

func noopShutdown(context.Context) error { return nil }

// initTelemetry starts OTLP export when enabled and creates the domain
// instruments either way. With export off the instruments record into the
// otel no-op providers.
func initTelemetry(ctx context.Context, cfg config.TelemetryConfig) (observability.ShutdownFunc, error) {
	shutdown := observability.ShutdownFunc(noopShutdown)

	if cfg.Enabled {
		stop, err := observability.StartTelemetry(ctx, cfg.ServiceName)
		if err != nil {
			return nil, err
		}
		shutdown = stop
	}

	if err := errors.Join(calculator.InitMetrics(), session.InitMetrics()); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}

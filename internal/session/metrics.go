package session

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	registrationsCounter metric.Int64Counter
	loginsCounter        metric.Int64Counter
	logoutsCounter       metric.Int64Counter
	errorCounter         metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// InitMetrics registers the session instruments. Safe to call more than once.
func InitMetrics() error {
	metricsOnce.Do(func() {
		metricsErr = initInstruments()
	})
	return metricsErr
}

func initInstruments() error {
	meter := otel.Meter("session")

	var err error

	registrationsCounter, err = meter.Int64Counter("session.registrations.total",
		metric.WithDescription("Total number of successful registrations"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return fmt.Errorf("creating registrations counter: %w", err)
	}

	loginsCounter, err = meter.Int64Counter("session.logins.total",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return fmt.Errorf("creating logins counter: %w", err)
	}

	logoutsCounter, err = meter.Int64Counter("session.logouts.total",
		metric.WithDescription("Total number of logouts that ended a session"),
		metric.WithUnit("{logout}"),
	)
	if err != nil {
		return fmt.Errorf("creating logouts counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("session.errors.total",
		metric.WithDescription("Total number of failed session requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}

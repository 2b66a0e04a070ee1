package calculator

import (
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Outcome values for the calculator.calculations.total "outcome" attribute.
const (
	outcomeOK             = "ok"
	outcomeDivisionByZero = "division_by_zero"
	outcomeNonFinite      = "non_finite"
	outcomeHistoryFailed  = "history_failed"
)

var (
	calculationsCounter metric.Int64Counter
	durationHistogram   metric.Float64Histogram
	errorCounter        metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// InitMetrics creates the calculator instruments on the global meter
// provider. Only the first call does any work.
func InitMetrics() error {
	metricsOnce.Do(func() {
		metricsErr = initInstruments(otel.Meter("calculator"))
	})
	return metricsErr
}

func initInstruments(meter metric.Meter) error {
	var errs []error

	var err error
	calculationsCounter, err = meter.Int64Counter("calculator.calculations.total",
		metric.WithDescription("Calculations that reached the engine, by operation and outcome"),
		metric.WithUnit("{calculation}"),
	)
	errs = append(errs, err)

	durationHistogram, err = meter.Float64Histogram("calculator.calculation.duration",
		metric.WithDescription("Time spent in the engine and history append"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.00001, 0.0001, 0.001, 0.01, 0.1, 1),
	)
	errs = append(errs, err)

	errorCounter, err = meter.Int64Counter("calculator.request_errors.total",
		metric.WithDescription("Rejected /calculate requests"),
		metric.WithUnit("{error}"),
	)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("creating calculator instruments: %w", err)
	}
	return nil
}

// outcomeOf classifies the error returned by the engine or history append.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrDivisionByZero):
		return outcomeDivisionByZero
	case errors.Is(err, ErrNonFiniteResult):
		return outcomeNonFinite
	default:
		return outcomeHistoryFailed
	}
}

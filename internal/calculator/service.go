package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"calculator-api/internal/history"
	"calculator-api/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrNonFiniteResult is returned when a result overflows to an infinity,
// which JSON cannot carry.
var ErrNonFiniteResult = errors.New("result is not a finite number")

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// HistoryRecorder receives every successful calculation.
type HistoryRecorder interface {
	Append(ctx context.Context, e history.Entry) error
}

// Service validates calculations, runs them through the engine and records
// successes in the history log.
type Service struct {
	history HistoryRecorder
}

func NewService(h HistoryRecorder) *Service {
	return &Service{history: h}
}

// Calculate runs c. Errors wrap ErrInvalidOperation when the operation is
// unknown (nothing is computed) and ErrDivisionByZero for a zero divisor.
func (s *Service) Calculate(ctx context.Context, c Calculation) (Result, error) {
	op, err := ParseOperation(string(c.Operation))
	if err != nil {
		return Result{}, err
	}

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", op),
		trace.WithAttributes(
			attribute.String("calculator.operation", string(op)),
			attribute.Float64("calculator.operand.a", c.Operand1),
			attribute.Float64("calculator.operand.b", c.Operand2),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := s.compute(ctx, op, c)
	elapsed := time.Since(start)

	attrs := metric.WithAttributes(
		attribute.String("operation", string(op)),
		attribute.String("outcome", outcomeOf(err)),
	)
	calculationsCounter.Add(ctx, 1, attrs)
	durationHistogram.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Int64("duration_us", elapsed.Microseconds()),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	observability.LoggerWithTrace(ctx).Info("calculator operation completed",
		zap.String("operation", string(op)),
		zap.Float64("a", c.Operand1),
		zap.Float64("b", c.Operand2),
		zap.Float64("result", result),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Duration("duration", elapsed),
	)

	return Result{Result: result}, nil
}

// compute runs the engine and appends the successful calculation to the
// history log.
func (s *Service) compute(ctx context.Context, op Operation, c Calculation) (float64, error) {
	result, err := Apply(op, c.Operand1, c.Operand2)
	if err != nil {
		return 0, err
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: %s(%g, %g)", ErrNonFiniteResult, op, c.Operand1, c.Operand2)
	}

	entry := history.Entry{
		Operand1:  c.Operand1,
		Operation: string(op),
		Operator:  op.Symbol(),
		Operand2:  c.Operand2,
		Result:    result,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return 0, fmt.Errorf("record history: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("calculator.expression", entry.String()))
	return result, nil
}

package observability

import (
	"context"
	"errors"
	"net/http"

	"calculator-api/internal/handlers"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RecordError centralises error handling across all domains: records the error
// on the span, increments the provided error counter, logs with trace context,
// and writes a JSON {"detail": msg} response.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName, msg string, err error, status int, w http.ResponseWriter) {
	recordFailure(ctx, span, counter, opName, msg, err)

	fields := []zap.Field{
		zap.String("operation", opName),
		zap.Int("status", status),
		zap.Error(err),
		zap.String("request_id", RequestIDFromContext(ctx)),
	}
	if status >= http.StatusInternalServerError {
		logger.Error(msg, fields...)
	} else {
		logger.Warn(msg, fields...)
	}

	handlers.WriteError(w, status, msg)
}

// RecordValidationError is RecordError for 422 responses carrying per-field
// problems.
func RecordValidationError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName string, problems []handlers.FieldError, w http.ResponseWriter) {
	err := errors.New("request validation failed")
	recordFailure(ctx, span, counter, opName, err.Error(), err)

	logger.Warn("request validation failed",
		zap.String("operation", opName),
		zap.Any("problems", problems),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)

	handlers.WriteValidationError(w, problems)
}

func recordFailure(ctx context.Context, span trace.Span, counter metric.Int64Counter, opName, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)

	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", opName)))
	}
}

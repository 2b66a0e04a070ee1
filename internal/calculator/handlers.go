package calculator

import (
	"errors"
	"net/http"
	"strings"

	"calculator-api/internal/handlers"
	"calculator-api/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handler exposes the calculation service over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Calculate handles POST /calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.calculate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req CalculateRequest
	if problems := handlers.DecodeJSON(r, &req); problems != nil {
		observability.RecordValidationError(ctx, span, logger, errorCounter, "calculate", problems, w)
		return
	}

	calc, problems := req.validate()
	if problems != nil {
		observability.RecordValidationError(ctx, span, logger, errorCounter, "calculate", problems, w)
		return
	}

	res, err := h.svc.Calculate(ctx, calc)
	switch {
	case errors.Is(err, ErrDivisionByZero), errors.Is(err, ErrNonFiniteResult):
		observability.RecordError(ctx, span, logger, errorCounter, string(calc.Operation), err.Error(), err, http.StatusInternalServerError, w)
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, string(calc.Operation), "internal server error", err, http.StatusInternalServerError, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, res)
}

// validate checks presence of every field and the operation enum. The
// operation is only parsed when present.
func (req CalculateRequest) validate() (Calculation, []handlers.FieldError) {
	var problems []handlers.FieldError
	problems = handlers.Required(problems, "operand1", req.Operand1 != nil)
	problems = handlers.Required(problems, "operand2", req.Operand2 != nil)
	problems = handlers.Required(problems, "operation", req.Operation != nil)

	var calc Calculation
	if req.Operation != nil {
		op, err := ParseOperation(*req.Operation)
		if err != nil {
			problems = append(problems, handlers.BodyField("operation", handlers.ProblemEnum,
				"Input should be "+allowedOperations()))
		}
		calc.Operation = op
	}
	if problems != nil {
		return calc, problems
	}

	calc.Operand1 = *req.Operand1
	calc.Operand2 = *req.Operand2
	return calc, nil
}

func allowedOperations() string {
	quoted := make([]string, len(Operations))
	for i, op := range Operations {
		quoted[i] = "'" + string(op) + "'"
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

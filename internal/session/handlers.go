package session

import (
	"context"
	"errors"
	"net/http"

	"calculator-api/internal/handlers"
	"calculator-api/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("session")

// credentialsRequest is the body of /register and /login. Pointer fields
// distinguish a missing field from an empty one.
type credentialsRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (req credentialsRequest) problems() []handlers.FieldError {
	var problems []handlers.FieldError
	problems = handlers.Required(problems, "username", req.Username != nil)
	problems = handlers.Required(problems, "password", req.Password != nil)
	return problems
}

// Handler serves the authentication endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "register")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	req, ok := decodeCredentials(w, r.WithContext(ctx), span, logger, "register")
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("session.username", *req.Username))

	user, err := h.store.Register(ctx, *req.Username, *req.Password)
	switch {
	case errors.Is(err, ErrInvalidUser):
		observability.RecordValidationError(ctx, span, logger, errorCounter, "register",
			[]handlers.FieldError{handlers.BodyField("", handlers.ProblemValueError, err.Error())}, w)
		return
	case errors.Is(err, ErrUserExists):
		observability.RecordError(ctx, span, logger, errorCounter, "register", "User already exists", err, http.StatusConflict, w)
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, "register", "internal server error", err, http.StatusInternalServerError, w)
		return
	}

	registrationsCounter.Add(ctx, 1)
	span.SetStatus(codes.Ok, "")

	logger.Info("user registered",
		zap.String("username", user.Username),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, user)
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "login")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	req, ok := decodeCredentials(w, r.WithContext(ctx), span, logger, "login")
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("session.username", *req.Username))

	user, err := h.store.Login(ctx, *req.Username, *req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		observability.RecordError(ctx, span, logger, errorCounter, "login", "Wrong username or password", err, http.StatusBadRequest, w)
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, "login", "internal server error", err, http.StatusInternalServerError, w)
		return
	}

	loginsCounter.Add(ctx, 1)
	span.SetStatus(codes.Ok, "")

	logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, user)
}

// Logout handles POST /logout. With nobody logged in it answers 204.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "logout")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	user, ok := h.store.Logout(ctx)
	span.SetAttributes(attribute.Bool("session.active", ok))
	span.SetStatus(codes.Ok, "")

	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	logoutsCounter.Add(ctx, 1)
	logger.Info("user logged out",
		zap.String("username", user.Username),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, user)
}

// Current handles GET /users/current. With nobody logged in it answers 204.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := h.store.Current(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, user)
}

func startSpan(r *http.Request, op string) (context.Context, trace.Span) {
	ctx := r.Context()
	return tracer.Start(ctx, "session."+op,
		trace.WithAttributes(
			attribute.String("session.operation", op),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request, span trace.Span, logger *zap.Logger, op string) (credentialsRequest, bool) {
	var req credentialsRequest
	if problems := handlers.DecodeJSON(r, &req); problems != nil {
		observability.RecordValidationError(r.Context(), span, logger, errorCounter, op, problems, w)
		return req, false
	}
	if problems := req.problems(); problems != nil {
		observability.RecordValidationError(r.Context(), span, logger, errorCounter, op, problems, w)
		return req, false
	}
	return req, true
}

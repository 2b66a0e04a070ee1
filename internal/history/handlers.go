package history

import (
	"net/http"

	"calculator-api/internal/handlers"
	"calculator-api/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("history")

// EntryView is an entry plus its rendered expression.
type EntryView struct {
	Entry
	Expression string `json:"expression"`
}

// ListResponse is the JSON response for GET /history.
type ListResponse struct {
	Entries []EntryView `json:"entries"`
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List handles GET /history
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "history.list")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	entries, err := h.store.All(ctx)
	if err != nil {
		observability.RecordError(ctx, span, logger, nil, "history.list", "internal server error", err, http.StatusInternalServerError, w)
		return
	}

	resp := ListResponse{Entries: make([]EntryView, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = EntryView{Entry: e, Expression: e.String()}
	}

	span.SetAttributes(attribute.Int("history.size", len(entries)))
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// Clear handles DELETE /history
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "history.clear")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	if err := h.store.Clear(ctx); err != nil {
		observability.RecordError(ctx, span, logger, nil, "history.clear", "internal server error", err, http.StatusInternalServerError, w)
		return
	}

	logger.Info("history cleared", zap.String("request_id", observability.RequestIDFromContext(ctx)))
	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes mounts the history endpoints under /history.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.List)
		r.Delete("/", h.Clear)
	})
}

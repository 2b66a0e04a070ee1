package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the calculation endpoint onto the given router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/calculate", h.Calculate)
}

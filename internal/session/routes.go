package session

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the authentication endpoints.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/users/current", h.Current)
}

package handlers

import (
	"encoding/json"
	"net/http"
)

// Validation problem types reported in 422 bodies.
const (
	ProblemMissing     = "missing"
	ProblemEnum        = "enum"
	ProblemTypeError   = "type_error"
	ProblemJSONInvalid = "json_invalid"
	ProblemValueError  = "value_error"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// BodyField builds a FieldError located in the request body.
func BodyField(field, typ, msg string) FieldError {
	loc := []string{"body"}
	if field != "" {
		loc = append(loc, field)
	}
	return FieldError{Loc: loc, Msg: msg, Type: typ}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardised JSON error response.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{
		"detail": msg,
	})
}

// WriteValidationError writes a 422 response listing every rejected field.
func WriteValidationError(w http.ResponseWriter, problems []FieldError) {
	WriteJSON(w, http.StatusUnprocessableEntity, map[string][]FieldError{
		"detail": problems,
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

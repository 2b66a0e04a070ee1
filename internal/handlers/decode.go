package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds request bodies; every payload here is a handful of fields.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes the request body into dst and reports decode failures as
// validation problems. A nil result means dst was populated.
func DecodeJSON(r *http.Request, dst any) []FieldError {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))

	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &typeErr):
		return []FieldError{BodyField(typeErr.Field, ProblemTypeError,
			fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))}
	case errors.As(err, &syntaxErr):
		return []FieldError{BodyField("", ProblemJSONInvalid,
			fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))}
	case errors.Is(err, io.EOF):
		return []FieldError{BodyField("", ProblemMissing, "request body required")}
	default:
		return []FieldError{BodyField("", ProblemJSONInvalid, err.Error())}
	}
}

// Required appends a "missing" problem for field when present is false.
func Required(problems []FieldError, field string, present bool) []FieldError {
	if present {
		return problems
	}
	return append(problems, BodyField(field, ProblemMissing, "field required"))
}

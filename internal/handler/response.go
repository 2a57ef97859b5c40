package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/service"
)

// Envelope wraps successful responses. Count, Page and TotalPages are
// set for paginated listings only.
type Envelope struct {
	Data       any   `json:"data"`
	Count      int64 `json:"count,omitempty"`
	Page       int   `json:"page,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Data writes {"data": v}.
func Data(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Envelope{Data: v})
}

// Paged writes a page of items with its pagination fields.
func Paged[T any](w http.ResponseWriter, page *domain.Page[T]) {
	WriteJSON(w, http.StatusOK, Envelope{
		Data:       page.Items,
		Count:      page.Count,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

// DecodeJSON reads a JSON body into dst and validates it. Unknown fields
// are rejected. An empty body decodes to dst's zero value.
func DecodeJSON(r *http.Request, v *validator.Validate, op string, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.Errorf(domain.EINVALID, op, "request body too large")
		}
		return domain.Errorf(domain.EINVALID, op, "invalid JSON body: %s", jsonProblem(err))
	}

	if v == nil {
		return nil
	}
	if err := v.Struct(dst); err != nil {
		return service.ValidationError(op, err)
	}
	return nil
}

func jsonProblem(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return "malformed JSON"
	case errors.As(err, &typeErr):
		return "field " + typeErr.Field + " has the wrong type"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return strings.TrimPrefix(err.Error(), "json: ")
	default:
		return "unreadable body"
	}
}

package middleware

import (
	"net/http"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/handler"
)

type contextKey string

// respondWithError writes a JSON error through the handler package so
// middleware rejections look like every other API error.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := handler.ErrorCodeToHTTPStatus(domain.ErrorCode(err))
	GetLogger(r.Context()).InfoContext(r.Context(), "middleware rejected request",
		"error", err.Error(),
		"status", status,
	)
	handler.ErrorResponse(w, r, err)
}

func respondTooManyRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	respondWithError(w, r, domain.Errorf(domain.ERATELIMIT, "", "Too many requests"))
}

// respondTooLarge writes 413 directly; no domain code maps to it.
func respondTooLarge(w http.ResponseWriter, r *http.Request) {
	GetLogger(r.Context()).InfoContext(r.Context(), "request body too large",
		"content_length", r.ContentLength,
	)
	handler.WriteJSON(w, http.StatusRequestEntityTooLarge, handler.ErrorBody{
		Error: "Request body too large",
		Code:  domain.EINVALID,
	})
}

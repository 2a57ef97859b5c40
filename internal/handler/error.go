package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/telemetry"
)

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EGONE:
		return http.StatusGone
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.ENOTIMPL:
		return http.StatusNotImplemented
	case domain.EUPSTREAM:
		return http.StatusBadGateway
	case domain.ETIMEOUT:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorResponse writes err as {"error": message} with the mapped status.
// Internal errors are logged and captured, and their details are hidden.
// Validation errors carry their per-field messages.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsValidationError(err) {
		ValidationErrorResponse(w, r, err)
		return
	}

	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	if status >= http.StatusInternalServerError && code != domain.EUPSTREAM && code != domain.ETIMEOUT {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"op", domain.ErrorOp(err),
			"error", err,
		)
		telemetry.CaptureErrorFromContext(r.Context(), err, map[string]interface{}{
			"op": domain.ErrorOp(err),
		})
	}

	WriteJSON(w, status, ErrorBody{
		Error: domain.ErrorMessage(err),
		Code:  code,
	})
}

// ValidationErrorResponse writes a 400 with per-field messages. Other
// errors fall back to ErrorResponse.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if !domain.IsValidationError(err) {
		ErrorResponse(w, r, err)
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorBody{
		Error:  "Request validation failed",
		Code:   domain.EINVALID,
		Fields: domain.GetValidationFields(err),
	})
}

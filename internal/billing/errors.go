package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAPIKey is returned when a gateway secret key is missing.
	ErrInvalidAPIKey = errors.New("billing: invalid or missing API key")

	// ErrInvalidWebhookSignature is returned when webhook signature verification fails.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")

	// ErrTransactionNotFound is returned when the gateway has no record of a payment.
	ErrTransactionNotFound = errors.New("billing: transaction not found")

	// ErrMalformedEvent is returned when a webhook body cannot be decoded.
	ErrMalformedEvent = errors.New("billing: malformed webhook event")

	// ErrUnknownProvider is returned by NewProvider for an unsupported name.
	ErrUnknownProvider = errors.New("billing: unknown payment provider")
)

// GatewayError wraps a failed gateway API call with additional context.
type GatewayError struct {
	Gateway    string // "flutterwave", "stripe"
	Op         string // e.g. "initiate", "verify"
	StatusCode int    // HTTP status from the gateway, 0 for transport errors
	Code       string // gateway error code, if any
	Message    string // human-readable message from the gateway
	Err        error  // underlying error
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s (status %d)", e.Gateway, e.Op, msg, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %s", e.Gateway, e.Op, msg)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsTemporary returns true if the error is likely transient and retryable.
func (e *GatewayError) IsTemporary() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

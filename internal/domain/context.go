// Package domain holds the marketplace's core types, service interfaces,
// error codes and request-scoped context helpers.
package domain

import (
	"context"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// cartSessionContextKey stores the caller's cart session ID.
	cartSessionContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// --- Cart Session Context Helpers ---

// NewContextWithCartSession returns a new context carrying the cart session ID.
func NewContextWithCartSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, cartSessionContextKey, sessionID)
}

// CartSessionFromContext retrieves the cart session ID from context.
// Returns empty string if none is present.
func CartSessionFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(cartSessionContextKey).(string)
	return sessionID
}

// --- Request ID Context Helpers ---

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}

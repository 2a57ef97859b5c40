package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartSessionContext(t *testing.T) {
	t.Run("CartSessionFromContext returns empty string when unset", func(t *testing.T) {
		assert.Equal(t, "", CartSessionFromContext(context.Background()))
	})

	t.Run("CartSessionFromContext returns session when set", func(t *testing.T) {
		ctx := NewContextWithCartSession(context.Background(), "sess-123")
		assert.Equal(t, "sess-123", CartSessionFromContext(ctx))
	})
}

func TestRequestIDContext(t *testing.T) {
	t.Run("RequestIDFromContext returns empty string when unset", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFromContext(context.Background()))
	})

	t.Run("values coexist with cart session", func(t *testing.T) {
		ctx := NewContextWithRequestID(context.Background(), "req-1")
		ctx = NewContextWithCartSession(ctx, "sess-1")

		assert.Equal(t, "req-1", RequestIDFromContext(ctx))
		assert.Equal(t, "sess-1", CartSessionFromContext(ctx))
	})
}

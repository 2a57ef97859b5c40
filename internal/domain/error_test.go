package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Code: EINVALID, Message: "quantity must be at least 1"},
			expected: "quantity must be at least 1",
		},
		{
			name:     "with operation",
			err:      &Error{Code: EINVALID, Op: "cart.add", Message: "quantity must be at least 1"},
			expected: "cart.add: quantity must be at least 1",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EINTERNAL,
				Op:      "order.create",
				Message: "failed to save order",
				Err:     errors.New("connection reset"),
			},
			expected: "order.create: failed to save order: connection reset",
		},
		{
			name: "wrapped error without op",
			err: &Error{
				Code:    EINTERNAL,
				Message: "failed to save order",
				Err:     errors.New("connection reset"),
			},
			expected: "failed to save order: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_UnwrapAndIs(t *testing.T) {
	underlying := errors.New("underlying")
	err := &Error{Code: EINTERNAL, Message: "wrapped", Err: underlying}

	assert.Same(t, underlying, err.Unwrap())
	assert.ErrorIs(t, err, underlying)

	tagged := WithOp(ErrCartItemNotFound, "cart.update")
	assert.ErrorIs(t, tagged, ErrCartItemNotFound)
	assert.Equal(t, "cart.update", ErrorOp(tagged))
	assert.Equal(t, "", ErrCartItemNotFound.Op, "sentinel must not be mutated")
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"domain error", &Error{Code: EINVALID, Message: "test"}, EINVALID},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", &Error{Code: ENOTFOUND, Message: "test"}), ENOTFOUND},
		{"validation error", NewValidationError("checkout", "email", "required"), EINVALID},
		{"non-domain error", errors.New("some error"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorCode(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	generic := "An internal error occurred. Please try again later."

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"domain error", &Error{Code: ENOTFOUND, Message: "Order not found"}, "Order not found"},
		{"internal error hides message", &Error{Code: EINTERNAL, Message: "dsn leaked"}, generic},
		{"non-domain error", errors.New("pq: secret detail"), generic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorMessage(tt.err))
		})
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(EINVALID, "cart.add", "quantity %d is not allowed", -2)

	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, EINVALID, domainErr.Code)
	assert.Equal(t, "cart.add", domainErr.Op)
	assert.Equal(t, "quantity -2 is not allowed", domainErr.Message)
}

func TestWrapError(t *testing.T) {
	t.Run("wraps non-nil error", func(t *testing.T) {
		underlying := errors.New("db error")
		err := WrapError(underlying, EINTERNAL, "order.save", "failed to save order")

		assert.Equal(t, EINTERNAL, ErrorCode(err))
		assert.ErrorIs(t, err, underlying)
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, EINTERNAL, "test", "test"))
	})
}

func TestUpstream(t *testing.T) {
	t.Run("deadline becomes timeout", func(t *testing.T) {
		err := Upstream(fmt.Errorf("get: %w", context.DeadlineExceeded), "payment.verify", "gateway timed out")
		assert.Equal(t, ETIMEOUT, ErrorCode(err))
	})

	t.Run("other failures are upstream", func(t *testing.T) {
		err := Upstream(errors.New("connection refused"), "payment.verify", "gateway unavailable")
		assert.Equal(t, EUPSTREAM, ErrorCode(err))
		assert.Equal(t, "gateway unavailable", ErrorMessage(err))
	})
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("checkout", "email", "email is required")
	assert.Equal(t, "checkout: email: email is required", err.Error())
	assert.True(t, IsValidationError(err))

	err = AddFieldError(err, "phone", "too long")
	assert.Len(t, GetValidationFields(err), 2)

	assert.False(t, IsValidationError(errors.New("plain")))
	assert.Nil(t, GetValidationFields(errors.New("plain")))
}

func TestConvenienceFunctions(t *testing.T) {
	assert.Equal(t, ENOTFOUND, ErrorCode(NotFound("catalog.product", "product", "abc")))
	assert.Equal(t, EUNAUTHORIZED, ErrorCode(Unauthorized("payment.webhook", "bad signature")))
	assert.Equal(t, EFORBIDDEN, ErrorCode(Forbidden("order.get", "nope")))
	assert.Equal(t, EINVALID, ErrorCode(Invalid("cart.add", "bad")))
	assert.Equal(t, ECONFLICT, ErrorCode(Conflict("order.reinitiate", "paid")))
	assert.Equal(t, EINTERNAL, ErrorCode(Internal(nil, "x", "y")))
	assert.Equal(t, ETIMEOUT, ErrorCode(Timeout(nil, "x", "y")))
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/dukerupert/isoko/internal/billing"
	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/telemetry"
)

// callGateway runs fn with a deadline and records its latency.
func callGateway[T any](ctx context.Context, gateway billing.Provider, timeout time.Duration, operation string, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	v, err := fn(ctx)
	if telemetry.Business != nil {
		telemetry.Business.GatewayAPILatency.WithLabelValues(gateway.Name(), operation).Observe(time.Since(start).Seconds())
	}
	return v, err
}

// gatewayError maps a billing failure to EUPSTREAM or ETIMEOUT.
func gatewayError(err error, op, message string) error {
	if errors.Is(err, billing.ErrTransactionNotFound) {
		return domain.WithOp(ErrTransactionUnknown, op)
	}
	return domain.Upstream(err, op, message)
}

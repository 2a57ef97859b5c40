package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dukerupert/isoko/internal/billing"
	"github.com/dukerupert/isoko/internal/cache"
	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/events"
	"github.com/dukerupert/isoko/internal/repository"
	"github.com/dukerupert/isoko/internal/telemetry"
)

// PaymentConfig holds reconciliation settings.
type PaymentConfig struct {
	// Timeout bounds each gateway call.
	Timeout time.Duration

	// SweepBatchSize caps how many orders one ReconcilePending run examines.
	SweepBatchSize int32
}

const defaultSweepBatchSize = 100

// Where a gateway verdict came from, for metrics and logs.
const (
	sourceWebhook = "webhook"
	sourceSweep   = "sweep"
)

type paymentService struct {
	store   repository.Store
	gateway billing.Provider
	cache   cache.CartCache
	cfg     PaymentConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewPaymentService creates the reconciler that applies gateway verdicts.
func NewPaymentService(store repository.Store, gateway billing.Provider, cartCache cache.CartCache, cfg PaymentConfig, logger *slog.Logger) domain.PaymentService {
	if cartCache == nil {
		cartCache = cache.NoopCache{}
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}
	return &paymentService{
		store:   store,
		gateway: gateway,
		cache:   cartCache,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// ReconcileWebhook authenticates a callback and applies it to its order.
// Duplicate and out-of-order deliveries collapse to one transition.
func (s *paymentService) ReconcileWebhook(ctx context.Context, payload []byte, signature string) (*domain.ReconcileOutcome, error) {
	const op = "payment.webhook"
	gateway := s.gateway.Name()

	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(gateway).Inc()
	}

	if !s.gateway.WebhookSecured() {
		s.logger.WarnContext(ctx, "webhook secret not configured, accepting unsigned event", "gateway", gateway)
	}
	if err := s.gateway.VerifyWebhookSignature(payload, signature); err != nil {
		s.webhookFailed("signature")
		s.logger.WarnContext(ctx, "webhook signature rejected", "gateway", gateway, "error", err)
		return nil, domain.WithOp(ErrInvalidSignature, op)
	}

	event, err := s.gateway.ParseWebhookEvent(payload)
	if err != nil {
		s.webhookFailed("malformed")
		s.logger.WarnContext(ctx, "webhook payload rejected", "gateway", gateway, "error", err)
		return nil, domain.WithOp(ErrMalformedWebhook, op)
	}

	var outcome *domain.ReconcileOutcome
	switch e := event.(type) {
	case domain.PaymentSucceeded:
		outcome, err = s.applyEvent(ctx, e.PaymentDetails, true, "", sourceWebhook)
	case domain.PaymentFailed:
		outcome, err = s.applyEvent(ctx, e.PaymentDetails, false, e.Reason, sourceWebhook)
	default:
		outcome = &domain.ReconcileOutcome{Result: domain.ReconcileIgnored, Message: "event not handled"}
	}
	if err != nil {
		s.webhookFailed("internal")
		s.logger.ErrorContext(ctx, "webhook processing failed",
			"event", event.EventName(),
			"error", err,
		)
		telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{"event": event.EventName()})
		return nil, err
	}

	if telemetry.Business != nil {
		telemetry.Business.WebhookProcessed.WithLabelValues(event.EventName(), string(outcome.Result)).Inc()
	}
	s.logger.InfoContext(ctx, "webhook reconciled",
		"event", event.EventName(),
		"order_id", outcome.OrderID,
		"tx_ref", outcome.TxRef,
		"outcome", outcome.Result,
	)
	return outcome, nil
}

// VerifyTransaction reports the gateway's view of a transaction.
// It never changes order state.
func (s *paymentService) VerifyTransaction(ctx context.Context, transactionID string) (*domain.PaymentVerification, error) {
	const op = "payment.verify"
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, domain.WithOp(ErrTransactionMissing, op)
	}

	v, err := callGateway(ctx, s.gateway, s.cfg.Timeout, "verify", func(ctx context.Context) (*domain.PaymentVerification, error) {
		return s.gateway.VerifyTransaction(ctx, transactionID)
	})
	if err != nil {
		return nil, gatewayError(err, op, "Payment gateway unavailable")
	}
	return v, nil
}

// ReconcilePending asks the gateway about PENDING orders that have not
// moved for olderThan and applies any confirmed outcome.
func (s *paymentService) ReconcilePending(ctx context.Context, olderThan time.Duration) (*domain.SweepResult, error) {
	const op = "payment.sweep"
	result := &domain.SweepResult{}

	cutoff := s.now().Add(-olderThan)
	orders, err := s.store.ListStalePendingOrders(ctx, repository.ListStalePendingOrdersParams{
		UpdatedAt: timestamptz(cutoff),
		Limit:     s.cfg.SweepBatchSize,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list pending orders")
	}

	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++
		outcome := s.sweepOrder(ctx, order)
		switch outcome {
		case "paid":
			result.Paid++
		case "failed":
			result.Failed++
		case "closed":
			result.AlreadyClosed++
		case "review":
			result.NeedsReview++
		default:
			result.StillPending++
		}
		if telemetry.Business != nil {
			telemetry.Business.ReconcileOutcomes.WithLabelValues(outcome).Inc()
		}
	}

	if telemetry.Business != nil {
		telemetry.Business.ReconcileSweeps.Inc()
	}
	return result, nil
}

// sweepOrder returns one of paid, failed, closed, review or pending.
func (s *paymentService) sweepOrder(ctx context.Context, order repository.Order) string {
	orderID := uuidString(order.ID)
	lookup := billing.PaymentLookup{
		TxRef:            order.TxRef,
		GatewayReference: textValue(order.GatewayReference),
	}

	v, err := callGateway(ctx, s.gateway, s.cfg.Timeout, "find", func(ctx context.Context) (*domain.PaymentVerification, error) {
		return s.gateway.FindTransaction(ctx, lookup)
	})
	if err != nil {
		if errors.Is(err, billing.ErrTransactionNotFound) {
			return "pending"
		}
		s.logger.WarnContext(ctx, "pending order needs manual review",
			"order_id", orderID,
			"tx_ref", order.TxRef,
			"error", err,
		)
		return "review"
	}

	details := domain.PaymentDetails{
		Gateway:              s.gateway.Name(),
		TxRef:                v.TxRef,
		OrderID:              orderID,
		GatewayTransactionID: v.TransactionID,
		Amount:               v.Amount,
		Fractional:           v.Fractional,
		Currency:             v.Currency,
		PaymentType:          v.PaymentType,
		Raw:                  v.Raw,
	}
	if details.TxRef == "" {
		details.TxRef = order.TxRef
	}

	var outcome *domain.ReconcileOutcome
	switch {
	case v.Successful():
		outcome, err = s.applyToOrder(ctx, order, details, true, "", sourceSweep)
	case isFailedStatus(v.Status):
		outcome, err = s.applyToOrder(ctx, order, details, false, v.Status, sourceSweep)
	default:
		return "pending"
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "sweep failed to apply gateway verdict",
			"order_id", orderID,
			"tx_ref", order.TxRef,
			"error", err,
		)
		return "review"
	}

	switch outcome.Result {
	case domain.ReconcileProcessed:
		return "paid"
	case domain.ReconcileFailureRecorded:
		return "failed"
	case domain.ReconcileAlreadyProcessed:
		return "closed"
	default:
		return "review"
	}
}

// applyEvent resolves the event's order and applies the verdict.
func (s *paymentService) applyEvent(ctx context.Context, details domain.PaymentDetails, succeeded bool, reason, source string) (*domain.ReconcileOutcome, error) {
	order, found, err := s.resolveOrder(ctx, details)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.WarnContext(ctx, "webhook for unknown order, needs manual reconciliation",
			"order_id", details.OrderID,
			"tx_ref", details.TxRef,
			"gateway_transaction_id", details.GatewayTransactionID,
		)
		return &domain.ReconcileOutcome{
			Result:  domain.ReconcileIgnored,
			OrderID: details.OrderID,
			TxRef:   details.TxRef,
			Message: "order not found",
		}, nil
	}
	return s.applyToOrder(ctx, order, details, succeeded, reason, source)
}

// resolveOrder finds the order by metadata orderId first, then by its
// current tx_ref, then by any earlier attempt's tx_ref.
func (s *paymentService) resolveOrder(ctx context.Context, details domain.PaymentDetails) (repository.Order, bool, error) {
	if id, ok := parseUUID(details.OrderID); ok {
		order, err := s.store.GetOrderByID(ctx, id)
		if err == nil {
			return order, true, nil
		}
		if !repository.IsNotFound(err) {
			return repository.Order{}, false, domain.Internal(err, "payment.resolve", "failed to load order")
		}
	}

	if details.TxRef == "" {
		return repository.Order{}, false, nil
	}
	order, err := s.store.GetOrderByTxRef(ctx, details.TxRef)
	if err == nil {
		return order, true, nil
	}
	if !repository.IsNotFound(err) {
		return repository.Order{}, false, domain.Internal(err, "payment.resolve", "failed to load order")
	}

	order, err = s.store.GetOrderByAttemptTxRef(ctx, details.TxRef)
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.Order{}, false, nil
		}
		return repository.Order{}, false, domain.Internal(err, "payment.resolve", "failed to load order")
	}
	return order, true, nil
}

func (s *paymentService) applyToOrder(ctx context.Context, order repository.Order, details domain.PaymentDetails, succeeded bool, reason, source string) (*domain.ReconcileOutcome, error) {
	outcome := &domain.ReconcileOutcome{
		OrderID: uuidString(order.ID),
		TxRef:   details.TxRef,
	}
	if outcome.TxRef == "" {
		outcome.TxRef = order.TxRef
	}

	if succeeded {
		return s.markPaid(ctx, order, details, source, outcome)
	}
	return s.markFailed(ctx, order, details, reason, source, outcome)
}

func (s *paymentService) markPaid(ctx context.Context, order repository.Order, details domain.PaymentDetails, source string, outcome *domain.ReconcileOutcome) (*domain.ReconcileOutcome, error) {
	const op = "payment.mark_paid"
	if order.Status != string(domain.OrderStatusPending) {
		outcome.Result = domain.ReconcileAlreadyProcessed
		return outcome, nil
	}

	if field := mismatch(order, details); field != "" {
		s.reportMismatch(ctx, order, details, field)
		outcome.Result = domain.ReconcileIgnored
		outcome.Message = "payment does not match order " + field
		return outcome, nil
	}

	var paid repository.Order
	alreadyPaid := false
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		paid, err = q.MarkOrderPaid(ctx, repository.MarkOrderPaidParams{
			ID:      order.ID,
			Gateway: toText(details.Gateway),
		})
		if err != nil {
			if repository.IsNotFound(err) {
				alreadyPaid = true
				return nil
			}
			return domain.Internal(err, op, "failed to mark order paid")
		}

		if err := recordTransaction(ctx, q, order, details, "successful"); err != nil {
			return domain.Internal(err, op, "failed to record transaction")
		}
		if err := writeOrderEvent(ctx, q, events.OrderPaid, paid, ""); err != nil {
			return err
		}
		if err := q.ClearCartBySessionID(ctx, paid.CartSessionID); err != nil {
			return domain.Internal(err, op, "failed to clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadyPaid {
		outcome.Result = domain.ReconcileAlreadyProcessed
		return outcome, nil
	}

	if _, err := s.cache.Invalidate(ctx, paid.CartSessionID); err != nil {
		s.logger.WarnContext(ctx, "cart cache invalidation failed", "error", err, "order_id", outcome.OrderID)
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentSucceeded.WithLabelValues(details.Gateway, source).Inc()
		telemetry.Business.RevenueCollected.WithLabelValues(details.Gateway).Add(float64(paid.Total))
		telemetry.Business.CartCleared.Inc()
	}
	telemetry.AddBreadcrumb("payment", "order paid", map[string]interface{}{
		"order_id": outcome.OrderID,
		"tx_ref":   outcome.TxRef,
		"source":   source,
	})

	outcome.Result = domain.ReconcileProcessed
	return outcome, nil
}

func (s *paymentService) markFailed(ctx context.Context, order repository.Order, details domain.PaymentDetails, reason, source string, outcome *domain.ReconcileOutcome) (*domain.ReconcileOutcome, error) {
	const op = "payment.mark_failed"
	if order.Status != string(domain.OrderStatusPending) || order.PaymentStatus != string(domain.PaymentStatusPending) {
		outcome.Result = domain.ReconcileAlreadyProcessed
		return outcome, nil
	}

	// A failure for a tx_ref that ReinitiatePayment already replaced says
	// nothing about the attempt in progress.
	if details.TxRef != "" && details.TxRef != order.TxRef {
		if details.GatewayTransactionID != "" {
			if err := recordTransaction(ctx, s.store, order, details, "failed"); err != nil {
				return nil, domain.Internal(err, op, "failed to record transaction")
			}
		}
		s.logger.InfoContext(ctx, "failure for superseded payment attempt ignored",
			"order_id", outcome.OrderID,
			"tx_ref", details.TxRef,
			"current_tx_ref", order.TxRef,
		)
		outcome.Result = domain.ReconcileIgnored
		outcome.Message = "superseded payment attempt"
		return outcome, nil
	}

	alreadyFailed := false
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		n, err := q.MarkOrderPaymentFailed(ctx, order.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to mark payment failed")
		}
		if n == 0 {
			alreadyFailed = true
			return nil
		}

		if details.GatewayTransactionID != "" {
			if err := recordTransaction(ctx, q, order, details, "failed"); err != nil {
				return domain.Internal(err, op, "failed to record transaction")
			}
		}

		failed := order
		failed.PaymentStatus = string(domain.PaymentStatusFailed)
		return writeOrderEvent(ctx, q, events.OrderPaymentFailed, failed, reason)
	})
	if err != nil {
		return nil, err
	}
	if alreadyFailed {
		outcome.Result = domain.ReconcileAlreadyProcessed
		return outcome, nil
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentFailed.WithLabelValues(details.Gateway, source).Inc()
	}

	outcome.Result = domain.ReconcileFailureRecorded
	outcome.Message = reason
	return outcome, nil
}

func (s *paymentService) reportMismatch(ctx context.Context, order repository.Order, details domain.PaymentDetails, field string) {
	extras := map[string]interface{}{
		"order_id":         uuidString(order.ID),
		"tx_ref":           details.TxRef,
		"order_total":      order.Total,
		"order_currency":   order.Currency,
		"paid_amount":      details.Amount,
		"paid_currency":    details.Currency,
		"gateway":          details.Gateway,
		"gateway_tx":       details.GatewayTransactionID,
		"mismatched_field": field,
	}
	s.logger.ErrorContext(ctx, "suspicious payment: does not match order",
		"order_id", extras["order_id"],
		"tx_ref", details.TxRef,
		"field", field,
		"order_total", order.Total,
		"paid_amount", details.Amount,
		"order_currency", order.Currency,
		"paid_currency", details.Currency,
	)
	telemetry.CaptureMessage(fmt.Sprintf("payment %s mismatch for order %s", field, order.OrderNumber), sentry.LevelWarning, extras)
	if telemetry.Business != nil {
		telemetry.Business.PaymentMismatches.WithLabelValues(details.Gateway, field).Inc()
	}
}

func (s *paymentService) webhookFailed(reason string) {
	if telemetry.Business != nil {
		telemetry.Business.WebhookFailed.WithLabelValues(reason).Inc()
	}
}

// mismatch returns "amount" or "currency" when the payment does not cover
// the order exactly, or "" when it does.
func mismatch(order repository.Order, details domain.PaymentDetails) string {
	if !strings.EqualFold(order.Currency, details.Currency) {
		return "currency"
	}
	if details.Fractional || order.Total != details.Amount {
		return "amount"
	}
	return ""
}

func recordTransaction(ctx context.Context, q repository.Querier, order repository.Order, details domain.PaymentDetails, status string) error {
	txRef := details.TxRef
	if txRef == "" {
		txRef = order.TxRef
	}
	// (gateway, gateway_transaction_id) is the dedupe key.
	gatewayTxID := details.GatewayTransactionID
	if gatewayTxID == "" {
		gatewayTxID = txRef
	}
	_, err := q.CreateTransaction(ctx, repository.CreateTransactionParams{
		OrderID:              order.ID,
		TxRef:                txRef,
		Gateway:              details.Gateway,
		GatewayTransactionID: gatewayTxID,
		Amount:               details.Amount,
		Currency:             strings.ToUpper(details.Currency),
		Status:               status,
		PaymentType:          toText(details.PaymentType),
		RawPayload:           details.Raw,
	})
	return err
}

func isFailedStatus(status string) bool {
	switch strings.ToLower(status) {
	case "failed", "cancelled", "canceled":
		return true
	}
	return false
}

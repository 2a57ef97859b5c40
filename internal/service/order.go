package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/isoko/internal/billing"
	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/events"
	"github.com/dukerupert/isoko/internal/repository"
	"github.com/dukerupert/isoko/internal/telemetry"
)

const (
	orderNumberConstraint  = "orders_order_number_key"
	maxOrderNumberAttempts = 3
)

// OrderConfig holds checkout settings.
type OrderConfig struct {
	// TxRefPrefix namespaces payment references, e.g. "isoko-prod".
	TxRefPrefix string

	// RedirectURL is where hosted checkouts return the customer.
	RedirectURL string

	// PaymentTimeout bounds each gateway call.
	PaymentTimeout time.Duration
}

type orderService struct {
	store    repository.Store
	gateway  billing.Provider
	pricer   *Pricer
	validate *validator.Validate
	cfg      OrderConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService creates the checkout half of the reconciler.
func NewOrderService(store repository.Store, gateway billing.Provider, pricer *Pricer, cfg OrderConfig, logger *slog.Logger) domain.OrderService {
	return &orderService{
		store:    store,
		gateway:  gateway,
		pricer:   pricer,
		validate: NewValidator(),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateOrder snapshots the session's cart into a PENDING order and starts
// a payment for it. When the gateway call fails the order is still
// returned alongside the EUPSTREAM/ETIMEOUT error so the caller can retry
// with ReinitiatePayment.
func (s *orderService) CreateOrder(ctx context.Context, sessionID string, customer domain.CustomerInfo) (*domain.CheckoutResult, error) {
	const op = "order.create"
	if !ValidSessionID(sessionID) {
		return nil, domain.WithOp(ErrInvalidSession, op)
	}

	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if err := s.validate.Struct(customer); err != nil {
		return nil, ValidationError(op, err)
	}

	cart, err := s.store.GetCartBySessionID(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.WithOp(ErrEmptyCart, op)
		}
		return nil, domain.Internal(err, op, "failed to load cart")
	}

	rows, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load cart items")
	}
	items := cartItemsFromRows(rows)
	if len(items) == 0 {
		return nil, domain.WithOp(ErrEmptyCart, op)
	}

	totals, err := s.pricer.Totals(ctx, items)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to price order")
	}

	now := s.now()
	txRef := newTxRef(s.cfg.TxRefPrefix, now)

	params := repository.CreateOrderParams{
		CartSessionID: sessionID,
		CustomerEmail: customer.Email,
		CustomerName:  toText(customer.Name),
		CustomerPhone: toText(customer.Phone),
		Currency:      totals.Currency,
		Subtotal:      totals.Subtotal,
		Shipping:      totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.Total,
		TxRef:         txRef,
	}

	var created repository.Order
	var createdItems []repository.OrderItem
	for attempt := 1; ; attempt++ {
		params.OrderNumber = NewOrderNumber(now)
		created, createdItems, err = s.insertOrder(ctx, op, params, items)
		if err == nil {
			break
		}
		if attempt < maxOrderNumberAttempts && repository.IsUniqueViolation(err, orderNumberConstraint) {
			s.logger.WarnContext(ctx, "order number collision, retrying",
				"order_number", params.OrderNumber,
				"attempt", attempt,
			)
			continue
		}
		return nil, err
	}

	if telemetry.Business != nil {
		telemetry.Business.OrdersCreated.Inc()
		telemetry.Business.OrderValue.Observe(float64(created.Total))
	}

	order := orderFromRow(created, createdItems, nil)
	s.logger.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"tx_ref", order.TxRef,
		"total", order.Total,
	)

	return s.initiatePayment(ctx, op, order)
}

// insertOrder writes the order, its items, the first payment attempt and
// the order.created event in one transaction.
func (s *orderService) insertOrder(ctx context.Context, op string, params repository.CreateOrderParams, items []domain.CartItem) (repository.Order, []repository.OrderItem, error) {
	var created repository.Order
	var createdItems []repository.OrderItem
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		created, err = q.CreateOrder(ctx, params)
		if err != nil {
			return domain.Internal(err, op, "failed to create order")
		}

		for _, item := range items {
			row, err := q.CreateOrderItem(ctx, repository.CreateOrderItemParams{
				OrderID:     created.ID,
				ProductID:   mustUUID(item.ProductID),
				VendorID:    mustUUID(item.VendorID),
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.LineTotal,
			})
			if err != nil {
				return domain.Internal(err, op, "failed to create order item")
			}
			createdItems = append(createdItems, row)
		}

		if err := q.CreatePaymentAttempt(ctx, repository.CreatePaymentAttemptParams{
			OrderID: created.ID,
			TxRef:   created.TxRef,
		}); err != nil {
			return domain.Internal(err, op, "failed to record payment attempt")
		}

		return writeOrderEvent(ctx, q, events.OrderCreated, created, "")
	})
	if err != nil {
		return repository.Order{}, nil, err
	}
	return created, createdItems, nil
}

// ReinitiatePayment issues a fresh tx_ref for a PENDING order and asks
// the gateway again for the same amount.
func (s *orderService) ReinitiatePayment(ctx context.Context, orderID string) (*domain.CheckoutResult, error) {
	const op = "order.reinitiate"
	id, ok := parseUUID(orderID)
	if !ok {
		return nil, domain.WithOp(ErrOrderNotFound, op)
	}

	existing, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.WithOp(ErrOrderNotFound, op)
		}
		return nil, domain.Internal(err, op, "failed to load order")
	}
	if existing.Status != string(domain.OrderStatusPending) {
		return nil, domain.WithOp(ErrOrderNotPending, op)
	}

	var updated repository.Order
	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		updated, err = q.ResetOrderPayment(ctx, repository.ResetOrderPaymentParams{
			ID:    id,
			TxRef: newTxRef(s.cfg.TxRefPrefix, s.now()),
		})
		if err != nil {
			if repository.IsNotFound(err) {
				// Paid between the read and the reset.
				return domain.WithOp(ErrOrderNotPending, op)
			}
			return domain.Internal(err, op, "failed to reset payment")
		}

		// Earlier tx_refs stay resolvable so late webhooks for them still
		// find the order.
		if err := q.CreatePaymentAttempt(ctx, repository.CreatePaymentAttemptParams{
			OrderID: updated.ID,
			TxRef:   updated.TxRef,
		}); err != nil {
			return domain.Internal(err, op, "failed to record payment attempt")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := s.store.GetOrderItems(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load order items")
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentReinitiated.Inc()
	}

	order := orderFromRow(updated, items, nil)
	s.logger.InfoContext(ctx, "payment reinitiated",
		"order_id", order.ID,
		"previous_tx_ref", existing.TxRef,
		"tx_ref", order.TxRef,
	)

	return s.initiatePayment(ctx, op, order)
}

// GetOrder returns the order with its items and recorded transactions.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	const op = "order.get"
	id, ok := parseUUID(orderID)
	if !ok {
		return nil, domain.WithOp(ErrOrderNotFound, op)
	}

	row, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.WithOp(ErrOrderNotFound, op)
		}
		return nil, domain.Internal(err, op, "failed to load order")
	}

	items, err := s.store.GetOrderItems(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load order items")
	}

	txns, err := s.store.ListOrderTransactions(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load transactions")
	}

	return orderFromRow(row, items, txns), nil
}

// initiatePayment asks the gateway to collect order.Total. A gateway
// failure leaves the order PENDING; the result is still returned.
func (s *orderService) initiatePayment(ctx context.Context, op string, order *domain.Order) (*domain.CheckoutResult, error) {
	result := &domain.CheckoutResult{Order: order, TxRef: order.TxRef}

	session, err := callGateway(ctx, s.gateway, s.cfg.PaymentTimeout, "initiate", func(ctx context.Context) (*domain.PaymentSession, error) {
		return s.gateway.InitiatePayment(ctx, billing.InitiatePaymentParams{
			TxRef:       order.TxRef,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Amount:      order.Total,
			Currency:    order.Currency,
			Customer:    order.Customer,
			RedirectURL: s.cfg.RedirectURL,
			Description: "Order " + order.OrderNumber,
		})
	})
	if err != nil {
		if telemetry.Business != nil {
			telemetry.Business.PaymentInitiations.WithLabelValues(s.gateway.Name(), "error").Inc()
		}
		s.logger.ErrorContext(ctx, "payment initiation failed",
			"order_id", order.ID,
			"tx_ref", order.TxRef,
			"gateway", s.gateway.Name(),
			"error", err,
		)
		mapped := domain.Upstream(err, op, ErrPaymentInitiation.Message)
		if domain.ErrorCode(mapped) == domain.EUPSTREAM {
			telemetry.CaptureError(err, map[string]interface{}{"order_id": order.ID, "tx_ref": order.TxRef})
		}
		return result, mapped
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentInitiations.WithLabelValues(s.gateway.Name(), "ok").Inc()
	}

	order.Gateway = session.Gateway
	if session.GatewayReference != "" {
		order.GatewayReference = session.GatewayReference
	}
	if err := s.store.SetOrderGatewayReference(ctx, repository.SetOrderGatewayReferenceParams{
		ID:               mustUUID(order.ID),
		Gateway:          toText(session.Gateway),
		GatewayReference: toText(session.GatewayReference),
	}); err != nil {
		// The webhook resolves orders by tx_ref, so this is recoverable.
		s.logger.WarnContext(ctx, "failed to store gateway reference",
			"order_id", order.ID,
			"tx_ref", order.TxRef,
			"error", err,
		)
	}

	result.Payment = session
	return result, nil
}

// writeOrderEvent appends an order.* event to the outbox inside q's transaction.
func writeOrderEvent(ctx context.Context, q repository.Querier, eventType string, order repository.Order, reason string) error {
	payload, err := events.OrderPayload{
		OrderID:       uuidString(order.ID),
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TxRef:         order.TxRef,
		Gateway:       textValue(order.Gateway),
		Total:         order.Total,
		Currency:      order.Currency,
		CustomerEmail: order.CustomerEmail,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	}.Marshal()
	if err != nil {
		return domain.Internal(err, "outbox.write", "failed to encode event")
	}

	if err := q.CreateOutboxEvent(ctx, repository.CreateOutboxEventParams{
		AggregateID: order.ID,
		EventType:   eventType,
		Payload:     payload,
	}); err != nil {
		return domain.Internal(err, "outbox.write", "failed to write outbox event")
	}
	return nil
}

func orderFromRow(row repository.Order, items []repository.OrderItem, txns []repository.Transaction) *domain.Order {
	order := &domain.Order{
		ID:            uuidString(row.ID),
		OrderNumber:   row.OrderNumber,
		CartSessionID: row.CartSessionID,
		Customer: domain.CustomerInfo{
			Email: row.CustomerEmail,
			Name:  textValue(row.CustomerName),
			Phone: textValue(row.CustomerPhone),
		},
		Items:            make([]domain.OrderItem, 0, len(items)),
		Subtotal:         row.Subtotal,
		Shipping:         row.Shipping,
		Tax:              row.Tax,
		Total:            row.Total,
		Currency:         row.Currency,
		Status:           domain.OrderStatus(row.Status),
		PaymentStatus:    domain.PaymentStatus(row.PaymentStatus),
		TxRef:            row.TxRef,
		Gateway:          textValue(row.Gateway),
		GatewayReference: textValue(row.GatewayReference),
		PaidAt:           timePtr(row.PaidAt),
		CreatedAt:        timeValue(row.CreatedAt),
		UpdatedAt:        timeValue(row.UpdatedAt),
	}

	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          uuidString(item.ID),
			ProductID:   uuidString(item.ProductID),
			VendorID:    uuidString(item.VendorID),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}

	for _, tx := range txns {
		order.Transactions = append(order.Transactions, domain.Transaction{
			ID:                   uuidString(tx.ID),
			OrderID:              uuidString(tx.OrderID),
			TxRef:                tx.TxRef,
			GatewayTransactionID: tx.GatewayTransactionID,
			Gateway:              tx.Gateway,
			Amount:               tx.Amount,
			Currency:             tx.Currency,
			Status:               tx.Status,
			PaymentType:          textValue(tx.PaymentType),
			RawPayload:           tx.RawPayload,
			CreatedAt:            timeValue(tx.CreatedAt),
		})
	}
	return order
}

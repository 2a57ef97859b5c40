package api

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/handler"
)

// OrderHandler serves checkout, payment retry and order status.
type OrderHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders domain.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// checkoutFailure is returned when the order was saved but the gateway
// could not start a payment. The client retries with
// POST /api/orders/{orderId}/payment.
type checkoutFailure struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	OrderID string `json:"orderId"`
	TxRef   string `json:"txRef"`
}

// Checkout handles POST /api/checkout with {email, name, phone}
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var customer domain.CustomerInfo
	// The service normalises before validating, so decode only here.
	if err := handler.DecodeJSON(r, nil, "order.create", &customer); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	result, err := h.orders.CreateOrder(r.Context(), SessionID(r.Context()), customer)
	h.writeCheckout(w, r, http.StatusCreated, result, err)
}

// RetryPayment handles POST /api/orders/{id}/payment
func (h *OrderHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.ReinitiatePayment(r.Context(), r.PathValue("id"))
	h.writeCheckout(w, r, http.StatusOK, result, err)
}

// Get handles GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.Data(w, http.StatusOK, order)
}

func (h *OrderHandler) writeCheckout(w http.ResponseWriter, r *http.Request, status int, result *domain.CheckoutResult, err error) {
	if err == nil {
		handler.Data(w, status, result)
		return
	}
	if result == nil || result.Order == nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	code := domain.ErrorCode(err)
	h.logger.WarnContext(r.Context(), "order saved without payment session",
		"order_id", result.Order.ID,
		"tx_ref", result.TxRef,
		"code", code,
	)
	handler.WriteJSON(w, handler.ErrorCodeToHTTPStatus(code), checkoutFailure{
		Error:   domain.ErrorMessage(err),
		Code:    code,
		OrderID: result.Order.ID,
		TxRef:   result.TxRef,
	})
}

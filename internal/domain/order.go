package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Order-related domain errors.
var (
	ErrOrderNotFound      = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyCart          = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrOrderNotPending    = &Error{Code: ECONFLICT, Message: "Order is no longer awaiting payment"}
	ErrInvalidSignature   = &Error{Code: EUNAUTHORIZED, Message: "Invalid webhook signature"}
	ErrPaymentInitiation  = &Error{Code: EUPSTREAM, Message: "Payment could not be started, please retry"}
	ErrTransactionMissing = &Error{Code: EINVALID, Message: "transaction_id is required"}
)

// OrderStatus is the fulfilment-facing state of an order.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusPaid          OrderStatus = "PAID"
	OrderStatusPaymentFailed OrderStatus = "PAYMENT_FAILED"
	OrderStatusFulfilled     OrderStatus = "FULFILLED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
)

// PaymentStatus is the state of the order's current payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// OrderService turns a cart into an order and starts payment for it.
type OrderService interface {
	// CreateOrder snapshots the session's cart into a PENDING order and
	// asks the gateway to start a payment for it.
	CreateOrder(ctx context.Context, sessionID string, customer CustomerInfo) (*CheckoutResult, error)

	// ReinitiatePayment issues a fresh tx_ref for a PENDING order.
	ReinitiatePayment(ctx context.Context, orderID string) (*CheckoutResult, error)

	// GetOrder returns an order with its items and transactions.
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

// PaymentService applies gateway verdicts to orders.
type PaymentService interface {
	// ReconcileWebhook authenticates and applies one gateway callback.
	ReconcileWebhook(ctx context.Context, payload []byte, signature string) (*ReconcileOutcome, error)

	// VerifyTransaction asks the gateway for a transaction's status.
	// It never changes order state.
	VerifyTransaction(ctx context.Context, transactionID string) (*PaymentVerification, error)

	// ReconcilePending looks up PENDING orders older than olderThan at the
	// gateway and applies any confirmed outcome.
	ReconcilePending(ctx context.Context, olderThan time.Duration) (*SweepResult, error)
}

// Order is an immutable snapshot of a cart plus payment state.
type Order struct {
	ID               string        `json:"id"`
	OrderNumber      string        `json:"orderNumber"`
	CartSessionID    string        `json:"-"`
	Customer         CustomerInfo  `json:"customer"`
	Items            []OrderItem   `json:"items"`
	Subtotal         int64         `json:"subtotal"`
	Shipping         int64         `json:"shipping"`
	Tax              int64         `json:"tax"`
	Total            int64         `json:"total"`
	Currency         string        `json:"currency"`
	Status           OrderStatus   `json:"status"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	TxRef            string        `json:"txRef"`
	Gateway          string        `json:"gateway,omitempty"`
	GatewayReference string        `json:"gatewayReference,omitempty"`
	Transactions     []Transaction `json:"transactions,omitempty"`
	PaidAt           *time.Time    `json:"paidAt,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// OrderItem is a cart line copied into an order.
type OrderItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	VendorID    string `json:"vendorId"`
	ProductName string `json:"productName"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	LineTotal   int64  `json:"lineTotal"`
}

// Transaction records one confirmed gateway outcome for an order.
type Transaction struct {
	ID                   string          `json:"id"`
	OrderID              string          `json:"orderId"`
	TxRef                string          `json:"txRef"`
	GatewayTransactionID string          `json:"gatewayTransactionId"`
	Gateway              string          `json:"gateway"`
	Amount               int64           `json:"amount"`
	Currency             string          `json:"currency"`
	Status               string          `json:"status"`
	PaymentType          string          `json:"paymentType,omitempty"`
	RawPayload           json.RawMessage `json:"-"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// CustomerInfo is the contact data captured at checkout.
type CustomerInfo struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name,omitempty" validate:"omitempty,max=120"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// PaymentSession is what the client needs to complete payment.
type PaymentSession struct {
	Gateway          string `json:"gateway"`
	TxRef            string `json:"txRef"`
	PaymentURL       string `json:"paymentUrl,omitempty"`
	ClientSecret     string `json:"clientSecret,omitempty"`
	PublicKey        string `json:"publicKey,omitempty"`
	GatewayReference string `json:"-"`
}

// CheckoutResult is returned by CreateOrder and ReinitiatePayment.
type CheckoutResult struct {
	Order   *Order          `json:"order"`
	TxRef   string          `json:"txRef"`
	Payment *PaymentSession `json:"payment,omitempty"`
}

// ReconcileResult describes what a webhook did to an order.
type ReconcileResult string

const (
	ReconcileProcessed        ReconcileResult = "processed"
	ReconcileAlreadyProcessed ReconcileResult = "already_processed"
	ReconcileFailureRecorded  ReconcileResult = "failure_recorded"
	ReconcileIgnored          ReconcileResult = "ignored"
)

// ReconcileOutcome is reported back to the gateway and logged.
type ReconcileOutcome struct {
	Result  ReconcileResult
	OrderID string
	TxRef   string
	Message string
}

// PaymentVerification is the gateway's view of one transaction.
type PaymentVerification struct {
	TransactionID string          `json:"transactionId"`
	TxRef         string          `json:"txRef"`
	OrderID       string          `json:"orderId,omitempty"`
	Status        string          `json:"status"`
	Amount        int64           `json:"amount"`
	Fractional    bool            `json:"fractional,omitempty"`
	Currency      string          `json:"currency"`
	PaymentType   string          `json:"paymentType,omitempty"`
	Raw           json.RawMessage `json:"-"`
}

// Successful reports whether the gateway considers the payment settled.
func (v *PaymentVerification) Successful() bool {
	return v != nil && (v.Status == "successful" || v.Status == "succeeded")
}

// SweepResult summarises one ReconcilePending run.
type SweepResult struct {
	Checked       int
	Paid          int
	Failed        int
	StillPending  int
	NeedsReview   int
	AlreadyClosed int
}

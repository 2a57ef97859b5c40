package billing

import (
	"context"

	"github.com/dukerupert/isoko/internal/domain"
)

// Provider defines the interface for payment gateways.
// Implementations exist for Flutterwave (hosted checkout, mobile money),
// Stripe (card PaymentIntents) and an in-process mock.
type Provider interface {
	// Name identifies the gateway in stored transactions ("flutterwave", "stripe", "mock").
	Name() string

	// InitiatePayment asks the gateway to start collecting params.Amount.
	// Returns a hosted checkout link or a client secret for the frontend.
	InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*domain.PaymentSession, error)

	// VerifyTransaction fetches the gateway's view of a transaction by its
	// gateway-assigned ID. It never changes local state.
	VerifyTransaction(ctx context.Context, transactionID string) (*domain.PaymentVerification, error)

	// FindTransaction looks up the latest attempt for a tx_ref or gateway
	// reference. Returns ErrTransactionNotFound if the customer never paid.
	FindTransaction(ctx context.Context, lookup PaymentLookup) (*domain.PaymentVerification, error)

	// SignatureHeader is the HTTP header carrying the webhook signature.
	SignatureHeader() string

	// WebhookSecured reports whether a webhook secret is configured.
	// When false every webhook is accepted.
	WebhookSecured() bool

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	// Returns ErrInvalidWebhookSignature on mismatch.
	VerifyWebhookSignature(payload []byte, signature string) error

	// ParseWebhookEvent decodes a callback body into a domain.PaymentEvent.
	ParseWebhookEvent(payload []byte) (domain.PaymentEvent, error)
}

// InitiatePaymentParams contains parameters for starting a payment.
type InitiatePaymentParams struct {
	// TxRef is our unique reference for this attempt, echoed back by the gateway.
	TxRef string

	OrderID     string
	OrderNumber string

	// Amount is in whole units of Currency (RWF has no minor unit).
	Amount   int64
	Currency string

	Customer domain.CustomerInfo

	// RedirectURL is where hosted checkouts send the customer afterwards.
	RedirectURL string

	Description string
}

// Metadata returns the key/value pairs attached to the gateway payment so
// callbacks can be tied back to the order.
func (p InitiatePaymentParams) Metadata() map[string]string {
	return map[string]string{
		"orderId":     p.OrderID,
		"orderNumber": p.OrderNumber,
		"tx_ref":      p.TxRef,
	}
}

// PaymentLookup identifies a payment attempt without the gateway transaction ID.
type PaymentLookup struct {
	TxRef            string
	GatewayReference string
}

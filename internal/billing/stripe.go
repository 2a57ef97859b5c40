package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

const stripeName = "stripe"

// StripeProvider implements Provider using Stripe PaymentIntents.
// RWF is a zero-decimal currency in Stripe, so amounts pass through unchanged.
type StripeProvider struct {
	client        *stripe.Client
	webhookSecret string
}

// NewStripeProvider creates a new Stripe billing provider.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &StripeProvider{
		client:        stripe.NewClient(cfg.APIKey),
		webhookSecret: cfg.WebhookSecret,
	}, nil
}

var _ Provider = (*StripeProvider)(nil)

func (s *StripeProvider) Name() string            { return stripeName }
func (s *StripeProvider) SignatureHeader() string { return "Stripe-Signature" }
func (s *StripeProvider) WebhookSecured() bool    { return s.webhookSecret != "" }

// InitiatePayment creates a PaymentIntent and returns its client secret.
// The tx_ref doubles as the idempotency key so a retried request cannot
// create a second intent for the same attempt.
func (s *StripeProvider) InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*domain.PaymentSession, error) {
	piParams := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(strings.ToLower(params.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if params.Description != "" {
		piParams.Description = stripe.String(params.Description)
	}
	if params.Customer.Email != "" {
		piParams.ReceiptEmail = stripe.String(params.Customer.Email)
	}
	for k, v := range params.Metadata() {
		piParams.AddMetadata(k, v)
	}
	piParams.SetIdempotencyKey(params.TxRef)

	pi, err := s.client.V1PaymentIntents.Create(ctx, piParams)
	if err != nil {
		return nil, wrapStripeError("initiate", err)
	}

	return &domain.PaymentSession{
		Gateway:          stripeName,
		TxRef:            params.TxRef,
		ClientSecret:     pi.ClientSecret,
		GatewayReference: pi.ID,
	}, nil
}

// VerifyTransaction retrieves a PaymentIntent by ID.
func (s *StripeProvider) VerifyTransaction(ctx context.Context, transactionID string) (*domain.PaymentVerification, error) {
	pi, err := s.client.V1PaymentIntents.Retrieve(ctx, transactionID, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		return nil, wrapStripeError("verify", err)
	}
	return stripeVerification(pi), nil
}

// FindTransaction retrieves the PaymentIntent stored as the order's gateway reference.
func (s *StripeProvider) FindTransaction(ctx context.Context, lookup PaymentLookup) (*domain.PaymentVerification, error) {
	if lookup.GatewayReference == "" {
		return nil, ErrTransactionNotFound
	}
	return s.VerifyTransaction(ctx, lookup.GatewayReference)
}

// VerifyWebhookSignature validates the Stripe-Signature header.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	if s.webhookSecret == "" {
		return nil
	}
	if err := webhook.ValidatePayload(payload, signature, s.webhookSecret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhookSignature, err)
	}
	return nil
}

// ParseWebhookEvent decodes payment_intent.succeeded and
// payment_intent.payment_failed events. Anything else is unknown.
func (s *StripeProvider) ParseWebhookEvent(payload []byte) (domain.PaymentEvent, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	name := string(event.Type)
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
	default:
		return domain.UnknownPaymentEvent{Name: name, Raw: json.RawMessage(payload)}, nil
	}

	if event.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	details := domain.PaymentDetails{
		Gateway:              stripeName,
		TxRef:                pi.Metadata["tx_ref"],
		OrderID:              pi.Metadata["orderId"],
		GatewayTransactionID: pi.ID,
		Amount:               pi.Amount,
		Currency:             strings.ToUpper(string(pi.Currency)),
		PaymentType:          strings.Join(pi.PaymentMethodTypes, ","),
		CustomerEmail:        pi.ReceiptEmail,
		Raw:                  json.RawMessage(payload),
	}

	if event.Type == stripe.EventTypePaymentIntentSucceeded {
		return domain.PaymentSucceeded{Name: name, PaymentDetails: details}, nil
	}

	reason := ""
	if pi.LastPaymentError != nil {
		reason = pi.LastPaymentError.Msg
	}
	return domain.PaymentFailed{Name: name, Reason: reason, PaymentDetails: details}, nil
}

func stripeVerification(pi *stripe.PaymentIntent) *domain.PaymentVerification {
	raw, _ := json.Marshal(pi)
	return &domain.PaymentVerification{
		TransactionID: pi.ID,
		TxRef:         pi.Metadata["tx_ref"],
		OrderID:       pi.Metadata["orderId"],
		Status:        string(pi.Status),
		Amount:        pi.Amount,
		Currency:      strings.ToUpper(string(pi.Currency)),
		PaymentType:   strings.Join(pi.PaymentMethodTypes, ","),
		Raw:           raw,
	}
}

// wrapStripeError converts a Stripe SDK error into a GatewayError.
func wrapStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return &GatewayError{Gateway: stripeName, Op: op, Err: transportError(err)}
	}
	if stripeErr.Code == stripe.ErrorCodeResourceMissing {
		return ErrTransactionNotFound
	}
	return &GatewayError{
		Gateway:    stripeName,
		Op:         op,
		StatusCode: stripeErr.HTTPStatusCode,
		Code:       string(stripeErr.Code),
		Message:    stripeErr.Msg,
		Err:        err,
	}
}

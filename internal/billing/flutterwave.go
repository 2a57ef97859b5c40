package billing

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	flutterwaveName           = "flutterwave"
	flutterwaveDefaultBaseURL = "https://api.flutterwave.com/v3"
	flutterwaveHashHeader     = "verif-hash"
)

// FlutterwaveConfig contains configuration for the Flutterwave provider.
type FlutterwaveConfig struct {
	// PublicKey is returned to the client for inline checkout widgets.
	PublicKey string

	// SecretKey authenticates API calls (FLWSECK-...).
	SecretKey string

	// SecretHash is the value Flutterwave sends in the verif-hash header.
	// Empty means webhooks are not authenticated.
	SecretHash string

	// BaseURL defaults to https://api.flutterwave.com/v3.
	BaseURL string

	HTTPClient *http.Client
}

// FlutterwaveProvider implements Provider against the Flutterwave v3 REST API.
type FlutterwaveProvider struct {
	cfg     FlutterwaveConfig
	baseURL string
	client  *http.Client
}

// NewFlutterwaveProvider creates a Flutterwave provider.
func NewFlutterwaveProvider(cfg FlutterwaveConfig) (*FlutterwaveProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrInvalidAPIKey
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = flutterwaveDefaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &FlutterwaveProvider{cfg: cfg, baseURL: baseURL, client: client}, nil
}

var _ Provider = (*FlutterwaveProvider)(nil)

func (p *FlutterwaveProvider) Name() string            { return flutterwaveName }
func (p *FlutterwaveProvider) SignatureHeader() string { return flutterwaveHashHeader }
func (p *FlutterwaveProvider) WebhookSecured() bool    { return p.cfg.SecretHash != "" }

// =============================================================================
// WIRE TYPES
// =============================================================================

type flwEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type flwCustomer struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phonenumber,omitempty"`
}

type flwPaymentRequest struct {
	TxRef          string            `json:"tx_ref"`
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	RedirectURL    string            `json:"redirect_url,omitempty"`
	Customer       flwCustomer       `json:"customer"`
	Meta           map[string]string `json:"meta"`
	Customizations flwCustomizations `json:"customizations"`
}

type flwCustomizations struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type flwTransaction struct {
	ID                json.Number     `json:"id"`
	TxRef             string          `json:"tx_ref"`
	FlwRef            string          `json:"flw_ref"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	PaymentType       string          `json:"payment_type"`
	Customer          flwCustomer     `json:"customer"`
	Meta              map[string]any  `json:"meta"`
	ProcessorResponse string          `json:"processor_response"`
}

type flwWebhook struct {
	Event     string          `json:"event"`
	EventType string          `json:"event.type"`
	Data      json.RawMessage `json:"data"`
	MetaData  map[string]any  `json:"meta_data"`
}

// =============================================================================
// API CALLS
// =============================================================================

// InitiatePayment creates a hosted payment link (POST /payments).
func (p *FlutterwaveProvider) InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*domain.PaymentSession, error) {
	body := flwPaymentRequest{
		TxRef:       params.TxRef,
		Amount:      params.Amount,
		Currency:    params.Currency,
		RedirectURL: params.RedirectURL,
		Customer: flwCustomer{
			Email:       params.Customer.Email,
			Name:        params.Customer.Name,
			PhoneNumber: params.Customer.Phone,
		},
		Meta: params.Metadata(),
		Customizations: flwCustomizations{
			Title:       "Isoko",
			Description: params.Description,
		},
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := p.do(ctx, "initiate", http.MethodPost, "/payments", body, &data); err != nil {
		return nil, err
	}
	if data.Link == "" {
		return nil, &GatewayError{Gateway: flutterwaveName, Op: "initiate", Message: "response did not include a payment link"}
	}

	return &domain.PaymentSession{
		Gateway:    flutterwaveName,
		TxRef:      params.TxRef,
		PaymentURL: data.Link,
		PublicKey:  p.cfg.PublicKey,
	}, nil
}

// VerifyTransaction calls GET /transactions/{id}/verify.
func (p *FlutterwaveProvider) VerifyTransaction(ctx context.Context, transactionID string) (*domain.PaymentVerification, error) {
	path := "/transactions/" + url.PathEscape(transactionID) + "/verify"

	var tx flwTransaction
	raw, err := p.doRaw(ctx, "verify", http.MethodGet, path, nil, &tx)
	if err != nil {
		return nil, err
	}
	return tx.verification(raw), nil
}

// FindTransaction calls GET /transactions/verify_by_reference?tx_ref=.
func (p *FlutterwaveProvider) FindTransaction(ctx context.Context, lookup PaymentLookup) (*domain.PaymentVerification, error) {
	if lookup.TxRef == "" {
		return nil, ErrTransactionNotFound
	}
	path := "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(lookup.TxRef)

	var tx flwTransaction
	raw, err := p.doRaw(ctx, "lookup", http.MethodGet, path, nil, &tx)
	if err != nil {
		return nil, err
	}
	return tx.verification(raw), nil
}

func (p *FlutterwaveProvider) do(ctx context.Context, op, method, path string, in, out any) error {
	_, err := p.doRaw(ctx, op, method, path, in, out)
	return err
}

// doRaw performs one API call and decodes the envelope's data into out.
// It returns the raw data bytes for audit storage.
func (p *FlutterwaveProvider) doRaw(ctx context.Context, op, method, path string, in, out any) (json.RawMessage, error) {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("flutterwave %s: marshal request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("flutterwave %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &GatewayError{Gateway: flutterwaveName, Op: op, Err: transportError(err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &GatewayError{Gateway: flutterwaveName, Op: op, StatusCode: resp.StatusCode, Err: transportError(err)}
	}

	var env flwEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, &GatewayError{Gateway: flutterwaveName, Op: op, StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}

	if resp.StatusCode >= 400 || env.Status != "success" {
		if isFlutterwaveNotFound(resp.StatusCode, env.Message) {
			return nil, ErrTransactionNotFound
		}
		return nil, &GatewayError{Gateway: flutterwaveName, Op: op, StatusCode: resp.StatusCode, Code: env.Status, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &GatewayError{Gateway: flutterwaveName, Op: op, StatusCode: resp.StatusCode, Message: "invalid response data", Err: err}
		}
	}
	return env.Data, nil
}

func isFlutterwaveNotFound(status int, message string) bool {
	if status == http.StatusNotFound {
		return true
	}
	return status == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "no transaction")
}

// transportError makes client-side timeouts match context.DeadlineExceeded.
func transportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

func (tx flwTransaction) verification(raw json.RawMessage) *domain.PaymentVerification {
	return &domain.PaymentVerification{
		TransactionID: tx.ID.String(),
		TxRef:         tx.TxRef,
		OrderID:       metaString(tx.Meta, "orderId"),
		Status:        tx.Status,
		Amount:        wholeAmount(tx.Amount),
		Fractional:    !tx.Amount.IsInteger(),
		Currency:      tx.Currency,
		PaymentType:   tx.PaymentType,
		Raw:           raw,
	}
}

// =============================================================================
// WEBHOOKS
// =============================================================================

// VerifyWebhookSignature compares the verif-hash header with the configured
// secret hash in constant time.
func (p *FlutterwaveProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	return verifySharedSecret(p.cfg.SecretHash, signature)
}

func verifySharedSecret(secret, signature string) error {
	if secret == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(signature)) != 1 {
		return ErrInvalidWebhookSignature
	}
	return nil
}

// ParseWebhookEvent decodes a Flutterwave callback.
func (p *FlutterwaveProvider) ParseWebhookEvent(payload []byte) (domain.PaymentEvent, error) {
	return parseFlutterwaveEvent(flutterwaveName, payload)
}

func parseFlutterwaveEvent(gateway string, payload []byte) (domain.PaymentEvent, error) {
	var hook flwWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	name := hook.Event
	if name == "" {
		name = hook.EventType
	}

	var tx flwTransaction
	if len(hook.Data) > 0 && string(hook.Data) != "null" {
		if err := json.Unmarshal(hook.Data, &tx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
	}

	orderID := metaString(tx.Meta, "orderId")
	if orderID == "" {
		orderID = metaString(hook.MetaData, "orderId")
	}

	details := domain.PaymentDetails{
		Gateway:              gateway,
		TxRef:                tx.TxRef,
		OrderID:              orderID,
		GatewayTransactionID: tx.ID.String(),
		Amount:               wholeAmount(tx.Amount),
		Fractional:           !tx.Amount.IsInteger(),
		Currency:             tx.Currency,
		PaymentType:          tx.PaymentType,
		CustomerEmail:        tx.Customer.Email,
		Raw:                  json.RawMessage(payload),
	}

	status := strings.ToLower(tx.Status)
	switch {
	case name == "charge.completed" && status == "successful":
		return domain.PaymentSucceeded{Name: name, PaymentDetails: details}, nil
	case name == "charge.completed" && status == "failed", name == "charge.failed":
		return domain.PaymentFailed{Name: name, Reason: tx.ProcessorResponse, PaymentDetails: details}, nil
	default:
		if name == "" {
			name = "unknown"
		}
		return domain.UnknownPaymentEvent{Name: name, Raw: json.RawMessage(payload)}, nil
	}
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	switch v := meta[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// wholeAmount truncates toward zero so a fractional underpayment is never
// rounded up to the order total.
func wholeAmount(d decimal.Decimal) int64 {
	return d.Truncate(0).IntPart()
}

package billing

import (
	"context"
	"fmt"
	"sync"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for tests and local development.
// It speaks the Flutterwave webhook schema and checks the verif-hash header
// against SecretHash.
type MockProvider struct {
	// InitiatePaymentFunc allows customizing payment initiation behavior
	InitiatePaymentFunc func(ctx context.Context, params InitiatePaymentParams) (*domain.PaymentSession, error)

	// VerifyTransactionFunc allows customizing verification behavior
	VerifyTransactionFunc func(ctx context.Context, transactionID string) (*domain.PaymentVerification, error)

	// FindTransactionFunc allows customizing lookup behavior
	FindTransactionFunc func(ctx context.Context, lookup PaymentLookup) (*domain.PaymentVerification, error)

	// VerifyWebhookSignatureFunc allows customizing webhook verification behavior
	VerifyWebhookSignatureFunc func(payload []byte, signature string) error

	// SecretHash is compared with the webhook signature when no func is set.
	SecretHash string

	// Transactions are returned by VerifyTransaction (by ID) and
	// FindTransaction (by tx_ref) when no func is set.
	Transactions map[string]*domain.PaymentVerification

	// Sessions stores initiated payments keyed by tx_ref.
	Sessions map[string]InitiatePaymentParams

	// CallLog tracks method calls for test assertions
	CallLog []string

	mu sync.Mutex
}

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Transactions: make(map[string]*domain.PaymentVerification),
		Sessions:     make(map[string]InitiatePaymentParams),
		CallLog:      []string{},
	}
}

var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) Name() string            { return "mock" }
func (m *MockProvider) SignatureHeader() string { return flutterwaveHashHeader }
func (m *MockProvider) WebhookSecured() bool    { return m.SecretHash != "" }

func (m *MockProvider) log(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, call)
}

// Calls returns a copy of the call log.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.CallLog...)
}

// InitiatePayment returns a fake hosted checkout link.
func (m *MockProvider) InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*domain.PaymentSession, error) {
	m.log(fmt.Sprintf("InitiatePayment(%s, %d %s)", params.TxRef, params.Amount, params.Currency))

	if m.InitiatePaymentFunc != nil {
		return m.InitiatePaymentFunc(ctx, params)
	}

	m.mu.Lock()
	m.Sessions[params.TxRef] = params
	m.mu.Unlock()

	return &domain.PaymentSession{
		Gateway:          "mock",
		TxRef:            params.TxRef,
		PaymentURL:       "https://checkout.mock.local/pay/" + params.TxRef,
		GatewayReference: "mock_" + uuid.NewString(),
	}, nil
}

// VerifyTransaction returns a stored transaction by ID.
func (m *MockProvider) VerifyTransaction(ctx context.Context, transactionID string) (*domain.PaymentVerification, error) {
	m.log(fmt.Sprintf("VerifyTransaction(%s)", transactionID))

	if m.VerifyTransactionFunc != nil {
		return m.VerifyTransactionFunc(ctx, transactionID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.Transactions[transactionID]; ok {
		return v, nil
	}
	return nil, ErrTransactionNotFound
}

// FindTransaction returns the stored transaction whose TxRef matches.
func (m *MockProvider) FindTransaction(ctx context.Context, lookup PaymentLookup) (*domain.PaymentVerification, error) {
	m.log(fmt.Sprintf("FindTransaction(%s)", lookup.TxRef))

	if m.FindTransactionFunc != nil {
		return m.FindTransactionFunc(ctx, lookup)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.Transactions {
		if v.TxRef == lookup.TxRef {
			return v, nil
		}
	}
	return nil, ErrTransactionNotFound
}

// VerifyWebhookSignature compares the signature with SecretHash.
func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	m.log("VerifyWebhookSignature")

	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature)
	}
	return verifySharedSecret(m.SecretHash, signature)
}

// ParseWebhookEvent decodes a Flutterwave-shaped callback.
func (m *MockProvider) ParseWebhookEvent(payload []byte) (domain.PaymentEvent, error) {
	m.log("ParseWebhookEvent")
	return parseFlutterwaveEvent("mock", payload)
}

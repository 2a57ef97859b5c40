package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/isoko/internal/domain"
)

type mockPaymentService struct {
	reconcileFunc func(ctx context.Context, payload []byte, signature string) (*domain.ReconcileOutcome, error)
	verifyFunc    func(ctx context.Context, transactionID string) (*domain.PaymentVerification, error)
}

func (m *mockPaymentService) ReconcileWebhook(ctx context.Context, payload []byte, signature string) (*domain.ReconcileOutcome, error) {
	return m.reconcileFunc(ctx, payload, signature)
}

func (m *mockPaymentService) VerifyTransaction(ctx context.Context, transactionID string) (*domain.PaymentVerification, error) {
	return m.verifyFunc(ctx, transactionID)
}

func (m *mockPaymentService) ReconcilePending(ctx context.Context, olderThan time.Duration) (*domain.SweepResult, error) {
	return &domain.SweepResult{}, nil
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleWebhook(t *testing.T) {
	tests := []struct {
		name        string
		outcome     *domain.ReconcileOutcome
		err         error
		wantStatus  int
		wantResult  string
		wantMessage string
	}{
		{
			name:        "processed",
			outcome:     &domain.ReconcileOutcome{Result: domain.ReconcileProcessed, OrderID: "o1"},
			wantStatus:  http.StatusOK,
			wantResult:  StatusSuccess,
			wantMessage: "processed",
		},
		{
			name:        "ignored event still acknowledged",
			outcome:     &domain.ReconcileOutcome{Result: domain.ReconcileIgnored, Message: "unhandled event type"},
			wantStatus:  http.StatusOK,
			wantResult:  StatusSuccess,
			wantMessage: "ignored: unhandled event type",
		},
		{
			name:        "bad signature",
			err:         domain.ErrInvalidSignature,
			wantStatus:  http.StatusUnauthorized,
			wantResult:  StatusError,
			wantMessage: "Invalid webhook signature",
		},
		{
			name:        "storage failure asks for redelivery",
			err:         domain.Internal(errors.New("conn reset"), "payment.webhook", "failed to update order"),
			wantStatus:  http.StatusInternalServerError,
			wantResult:  StatusError,
			wantMessage: "An internal error occurred. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSignature string
			var gotPayload []byte
			svc := &mockPaymentService{
				reconcileFunc: func(ctx context.Context, payload []byte, signature string) (*domain.ReconcileOutcome, error) {
					gotPayload, gotSignature = payload, signature
					return tt.outcome, tt.err
				},
			}
			h := NewPaymentHandler(svc, PaymentHandlerConfig{Gateway: "flutterwave"}, nil)

			body := `{"event":"charge.completed","data":{"id":1}}`
			req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(body))
			req.Header.Set("verif-hash", "s3cr3t-hash")
			rec := httptest.NewRecorder()

			h.HandleWebhook(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "s3cr3t-hash", gotSignature)
			assert.JSONEq(t, body, string(gotPayload))
			resp := decodeResponse(t, rec)
			assert.Equal(t, tt.wantResult, resp.Status)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestHandleWebhook_CustomSignatureHeader(t *testing.T) {
	var gotSignature string
	svc := &mockPaymentService{
		reconcileFunc: func(ctx context.Context, payload []byte, signature string) (*domain.ReconcileOutcome, error) {
			gotSignature = signature
			return &domain.ReconcileOutcome{Result: domain.ReconcileIgnored}, nil
		},
	}
	h := NewPaymentHandler(svc, PaymentHandlerConfig{Gateway: "stripe", SignatureHeader: "Stripe-Signature"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	req.Header.Set("verif-hash", "ignored")
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t=1,v1=abc", gotSignature)
}

func TestHandleWebhook_OversizedBody(t *testing.T) {
	called := false
	svc := &mockPaymentService{
		reconcileFunc: func(ctx context.Context, payload []byte, signature string) (*domain.ReconcileOutcome, error) {
			called = true
			return nil, nil
		},
	}
	h := NewPaymentHandler(svc, PaymentHandlerConfig{Gateway: "flutterwave"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(strings.Repeat("a", maxPayloadBytes+1)))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		result     *domain.PaymentVerification
		err        error
		wantStatus int
		wantResult string
	}{
		{
			name:       "successful",
			query:      "?transaction_id=4975391",
			result:     &domain.PaymentVerification{TransactionID: "4975391", Status: "successful", Amount: 129800, Currency: "RWF"},
			wantStatus: http.StatusOK,
			wantResult: StatusSuccess,
		},
		{
			name:       "declined",
			query:      "?transaction_id=4975391",
			result:     &domain.PaymentVerification{TransactionID: "4975391", Status: "failed"},
			wantStatus: http.StatusOK,
			wantResult: StatusFailed,
		},
		{
			name:       "missing id",
			err:        domain.ErrTransactionMissing,
			wantStatus: http.StatusBadRequest,
			wantResult: StatusFailed,
		},
		{
			name:       "gateway timeout",
			query:      "?transaction_id=4975391",
			err:        domain.Upstream(context.DeadlineExceeded, "payment.verify", "Payment gateway timed out"),
			wantStatus: http.StatusGatewayTimeout,
			wantResult: StatusFailed,
		},
		{
			name:       "gateway down",
			query:      "?transaction_id=4975391",
			err:        domain.Upstream(errors.New("503"), "payment.verify", "Payment gateway unavailable"),
			wantStatus: http.StatusBadGateway,
			wantResult: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			svc := &mockPaymentService{
				verifyFunc: func(ctx context.Context, transactionID string) (*domain.PaymentVerification, error) {
					gotID = transactionID
					return tt.result, tt.err
				},
			}
			h := NewPaymentHandler(svc, PaymentHandlerConfig{Gateway: "flutterwave"}, nil)

			rec := httptest.NewRecorder()
			h.Verify(rec, httptest.NewRequest(http.MethodGet, "/api/payment/webhook"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantResult, decodeResponse(t, rec).Status)
			if tt.query != "" {
				assert.Equal(t, "4975391", gotID)
			}
		})
	}
}

package webhook

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/handler"
	"github.com/dukerupert/isoko/internal/telemetry"
)

// Response statuses reported back to the gateway.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// maxPayloadBytes caps webhook bodies. Gateway callbacks are a few KB.
const maxPayloadBytes = 64 << 10

// PaymentHandler receives gateway callbacks and serves the verify pull.
type PaymentHandler struct {
	payments        domain.PaymentService
	gateway         string
	signatureHeader string
	logger          *slog.Logger
}

// PaymentHandlerConfig names the gateway and the header its signature
// arrives in (verif-hash for Flutterwave, Stripe-Signature for Stripe).
type PaymentHandlerConfig struct {
	Gateway         string
	SignatureHeader string
}

// NewPaymentHandler creates a new payment webhook handler
func NewPaymentHandler(payments domain.PaymentService, cfg PaymentHandlerConfig, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	header := cfg.SignatureHeader
	if header == "" {
		header = "verif-hash"
	}
	return &PaymentHandler{
		payments:        payments,
		gateway:         cfg.Gateway,
		signatureHeader: header,
		logger:          logger,
	}
}

// Response is the body returned to the gateway and to verify callers.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// HandleWebhook handles POST /api/payment/webhook.
//
// Accepted and ignored events return 200 so the gateway stops retrying.
// A bad signature returns 401. Storage failures return 500 so the
// gateway redelivers.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, finish := telemetry.StartSpan(r.Context(), "webhook.payment", h.gateway)
	defer finish()
	defer func() {
		if telemetry.Business != nil {
			telemetry.Business.WebhookLatency.WithLabelValues(h.gateway).Observe(time.Since(start).Seconds())
		}
	}()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.WarnContext(ctx, "webhook body unreadable", "error", err)
		handler.WriteJSON(w, http.StatusBadRequest, Response{Status: StatusError, Message: "unreadable body"})
		return
	}

	outcome, err := h.payments.ReconcileWebhook(ctx, payload, r.Header.Get(h.signatureHeader))
	if err != nil {
		code := domain.ErrorCode(err)
		handler.WriteJSON(w, handler.ErrorCodeToHTTPStatus(code), Response{
			Status:  StatusError,
			Message: domain.ErrorMessage(err),
		})
		return
	}

	message := string(outcome.Result)
	if outcome.Message != "" {
		message += ": " + outcome.Message
	}
	handler.WriteJSON(w, http.StatusOK, Response{Status: StatusSuccess, Message: message})
}

// Verify handles GET /api/payment/webhook?transaction_id=
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	verification, err := h.payments.VerifyTransaction(r.Context(), r.URL.Query().Get("transaction_id"))
	if err != nil {
		code := domain.ErrorCode(err)
		handler.WriteJSON(w, handler.ErrorCodeToHTTPStatus(code), Response{
			Status:  StatusFailed,
			Message: domain.ErrorMessage(err),
		})
		return
	}

	if !verification.Successful() {
		handler.WriteJSON(w, http.StatusOK, Response{Status: StatusFailed, Data: verification})
		return
	}
	handler.WriteJSON(w, http.StatusOK, Response{Status: StatusSuccess, Data: verification})
}

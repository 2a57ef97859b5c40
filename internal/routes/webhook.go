package routes

import (
	"github.com/dukerupert/isoko/internal/router"
)

// RegisterWebhookRoutes registers the payment gateway callback and the
// verify pull.
//
// These routes have no session or auth middleware. The handler checks the
// gateway signature header itself.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	hooks := r
	if deps.Limiter != nil {
		hooks = r.Group(deps.Limiter.Middleware)
	}
	hooks.Post("/api/payment/webhook", deps.Payment.HandleWebhook)
	hooks.Get("/api/payment/webhook", deps.Payment.Verify)
}

// RegisterOpsRoutes registers /health and /metrics.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/health", deps.Health)
	if deps.Metrics != nil {
		r.Handle("GET", "/metrics", deps.Metrics)
	}
}

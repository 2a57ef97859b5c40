package routes

import (
	"net/http"

	"github.com/dukerupert/isoko/internal/cookie"
	"github.com/dukerupert/isoko/internal/handler/api"
	"github.com/dukerupert/isoko/internal/handler/webhook"
	"github.com/dukerupert/isoko/internal/middleware"
)

// APIDeps contains dependencies for the storefront JSON API
type APIDeps struct {
	Catalog *api.CatalogHandler
	Cart    *api.CartHandler
	Orders  *api.OrderHandler

	// CookieConfig controls the isoko_cart session cookie
	CookieConfig *cookie.Config

	// CheckoutLimiter is applied on top of the global API limiter for
	// order creation and payment retries. Optional.
	CheckoutLimiter *middleware.RateLimiter
}

// WebhookDeps contains dependencies for the payment gateway callback
type WebhookDeps struct {
	Payment *webhook.PaymentHandler

	// Limiter replaces the API limiter on webhook routes. Optional.
	Limiter *middleware.RateLimiter
}

// OpsDeps contains the unauthenticated operational endpoints
type OpsDeps struct {
	Health  http.HandlerFunc
	Metrics http.Handler
}

package routes

import (
	"github.com/dukerupert/isoko/internal/handler/api"
	"github.com/dukerupert/isoko/internal/router"
)

// RegisterAPIRoutes registers the catalog, cart and order routes. Pass a
// group carrying the API rate limiter; webhook routes use their own.
//
// Catalog reads need no session. Cart and checkout routes run behind
// CartSession, which issues the isoko_cart cookie on first use.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	// Catalog
	r.Get("/api/products", deps.Catalog.ListProducts)
	r.Get("/api/products/featured", deps.Catalog.ListFeatured)
	r.Get("/api/products/{id}", deps.Catalog.GetProduct)
	r.Get("/api/categories", deps.Catalog.ListCategories)
	r.Get("/api/vendors", deps.Catalog.ListVendors)

	session := r.Group(api.CartSession(deps.CookieConfig))

	// Cart
	session.Get("/api/cart", deps.Cart.Get)
	session.Post("/api/cart", deps.Cart.Add)
	session.Put("/api/cart", deps.Cart.Update)
	session.Delete("/api/cart", deps.Cart.Clear)
	session.Put("/api/cart/{id}", deps.Cart.UpdateItem)
	session.Delete("/api/cart/{id}", deps.Cart.RemoveItem)

	// Orders
	checkout := session
	if deps.CheckoutLimiter != nil {
		checkout = session.Group(deps.CheckoutLimiter.Middleware)
	}
	checkout.Post("/api/checkout", deps.Orders.Checkout)
	checkout.Post("/api/orders/{id}/payment", deps.Orders.RetryPayment)
	r.Get("/api/orders/{id}", deps.Orders.Get)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/handler"
	"github.com/dukerupert/isoko/internal/service"
)

// CartHandler serves /api/cart for the session attached by CartSession.
type CartHandler struct {
	cart     domain.CartService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cart domain.CartService, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{
		cart:     cart,
		validate: service.NewValidator(),
		logger:   logger,
	}
}

type cartResponse struct {
	Data  *domain.Cart `json:"data"`
	Count int          `json:"count"`
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

type updateItemRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// Get handles GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.GetCart(r.Context(), SessionID(r.Context()))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

// Add handles POST /api/cart with {productId, quantity=1}
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := handler.DecodeJSON(r, h.validate, "cart.add", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.cart.AddItem(r.Context(), SessionID(r.Context()), req.ProductID, quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	writeCart(w, http.StatusCreated, cart)
}

// Update handles PUT /api/cart with {itemId, quantity}
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := handler.DecodeJSON(r, h.validate, "cart.update", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.updateQuantity(w, r, req.ItemID, *req.Quantity)
}

// UpdateItem handles PUT /api/cart/{id} with {quantity}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := handler.DecodeJSON(r, h.validate, "cart.update", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.updateQuantity(w, r, r.PathValue("id"), *req.Quantity)
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request, itemID string, quantity int) {
	cart, err := h.cart.UpdateQuantity(r.Context(), SessionID(r.Context()), itemID, quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/{id}. Removing an absent line succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.RemoveItem(r.Context(), SessionID(r.Context()), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Clear(r.Context(), SessionID(r.Context()))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

func writeCart(w http.ResponseWriter, status int, cart *domain.Cart) {
	handler.WriteJSON(w, status, cartResponse{Data: cart, Count: cart.Count()})
}

package domain

import (
	"context"
	"time"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartItemNotFound   = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity    = &Error{Code: EINVALID, Message: "Quantity must be at least 1"}
	ErrInvalidSession     = &Error{Code: EINVALID, Message: "Cart session is missing or malformed"}
	ErrProductUnavailable = &Error{Code: EINVALID, Message: "Product is not available for purchase"}
	ErrInsufficientStock  = &Error{Code: ECONFLICT, Message: "Not enough stock for the requested quantity"}
)

// CartService is the cart manager. Every operation is keyed by the
// caller's session ID; an unknown session starts an empty cart.
type CartService interface {
	// GetCart returns the cart with recomputed totals.
	GetCart(ctx context.Context, sessionID string) (*Cart, error)

	// AddItem adds quantity units of a product, merging into an existing line.
	// The product's current price is captured when the line is first created.
	AddItem(ctx context.Context, sessionID, productID string, quantity int) (*Cart, error)

	// UpdateQuantity replaces a line's quantity.
	// A quantity of zero or less removes the line.
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*Cart, error)

	// RemoveItem deletes a line. Removing a missing line is not an error.
	RemoveItem(ctx context.Context, sessionID, itemID string) (*Cart, error)

	// Clear deletes every line in the cart.
	Clear(ctx context.Context, sessionID string) (*Cart, error)

	// GetCount returns the total number of units in the cart, or 0 on any failure.
	GetCount(ctx context.Context, sessionID string) int
}

// Cart is a session's selections plus derived totals.
type Cart struct {
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	Items     []CartItem `json:"items"`
	Totals    CartTotals `json:"totals"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is one product line. UnitPrice is the price captured at add-time.
type CartItem struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	VendorID    string    `json:"vendorId"`
	ProductName string    `json:"productName"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Quantity    int32     `json:"quantity"`
	UnitPrice   int64     `json:"unitPrice"`
	LineTotal   int64     `json:"lineTotal"`
	AddedAt     time.Time `json:"addedAt"`
}

// CartTotals are whole-franc amounts derived from the cart lines.
type CartTotals struct {
	Subtotal  int64  `json:"subtotal"`
	Shipping  int64  `json:"shipping"`
	Tax       int64  `json:"tax"`
	Total     int64  `json:"total"`
	ItemCount int    `json:"itemCount"`
	Currency  string `json:"currency"`
}

// Count sums quantities, ignoring lines with a non-positive quantity.
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, item := range c.Items {
		if item.Quantity > 0 {
			n += int(item.Quantity)
		}
	}
	return n
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

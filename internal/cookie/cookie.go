// Package cookie provides the cart session cookie helpers.
package cookie

import (
	"net/http"
	"time"
)

// CartCookieName stores the anonymous cart session id.
const CartCookieName = "isoko_cart"

// CartSessionHeader lets non-browser clients carry the session explicitly.
const CartSessionHeader = "X-Cart-Session"

// DefaultMaxAge keeps a cart session for 30 days.
const DefaultMaxAge = 30 * 24 * 60 * 60

// Config holds cookie configuration.
type Config struct {
	// Domain scopes the cookie. Empty means host-only.
	Domain string

	// Secure determines whether cookies require HTTPS.
	// Should be true in production, false in development.
	Secure bool

	// MaxAge in seconds. Zero uses DefaultMaxAge.
	MaxAge int
}

// NewConfig creates a new cookie configuration.
func NewConfig(domain string, secure bool) *Config {
	return &Config{
		Domain: domain,
		Secure: secure,
		MaxAge: DefaultMaxAge,
	}
}

// SetSession sets an HttpOnly, SameSite=Lax session cookie.
func (c *Config) SetSession(w http.ResponseWriter, name, value string) {
	maxAge := c.MaxAge
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  time.Now().Add(time.Duration(maxAge) * time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession removes a session cookie by setting MaxAge to -1.
func (c *Config) ClearSession(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get retrieves a cookie value from the request.
// Returns empty string if cookie not found.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

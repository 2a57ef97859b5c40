package api

import (
	"context"
	"net/http"

	"github.com/dukerupert/isoko/internal/cookie"
	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/service"
)

// CartSession resolves the cart session from the isoko_cart cookie or the
// X-Cart-Session header. When neither carries a usable id a new one is
// issued as an HttpOnly cookie.
func CartSession(cfg *cookie.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(cookie.CartSessionHeader)
			if !service.ValidSessionID(sessionID) {
				sessionID = cookie.Get(r, cookie.CartCookieName)
			}
			if !service.ValidSessionID(sessionID) {
				sessionID = service.NewSessionID()
				cfg.SetSession(w, cookie.CartCookieName, sessionID)
			}

			ctx := domain.NewContextWithCartSession(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the cart session attached by CartSession.
func SessionID(ctx context.Context) string {
	return domain.CartSessionFromContext(ctx)
}

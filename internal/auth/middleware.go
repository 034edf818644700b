package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity value.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth enforces authentication on protected routes.
//
// The token is read from the "Authorization: Bearer ..." header first (what
// the mobile client sends), falling back to the "token" HttpOnly cookie set
// by the browser OAuth flow. Missing or invalid tokens end the chain with
// 401 before the handler runs.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the identity when a valid token is present but never
// blocks the request. Public routes (the feed, the storefront) use it so
// anonymous callers still get a response while authenticated callers get the
// personalised fields.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := extractIdentity(r, tokens); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext retrieves the verified identity of the caller.
// Returns (nil, false) when the request is anonymous.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil && id.UID != ""
}

func extractIdentity(r *http.Request, tokens *TokenService) (*Identity, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return tokens.Validate(strings.TrimPrefix(h, "Bearer "))
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		return nil, err
	}
	return tokens.Validate(cookie.Value)
}

package web

import (
	"context"
	"net/http"

	"chatline/auth"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"

type contextKey string

const usernameKey contextKey = "username"

// UsernameFromContext returns the authenticated username placed on the
// request context by the session middleware.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

// SessionMiddleware validates the session cookie and injects the bound
// username into the request context. The binding is trusted as-is: the
// token signature is the only check, exactly what the store expects from
// its session collaborator.
func SessionMiddleware(tokens auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := tokens.Validate(cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Package web is the stateless HTTP adapter in front of the store. It
// translates the route contract onto service calls and owns nothing but
// serialization, session checking and status codes.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"chatline/auth"

	"github.com/gorilla/mux"
)

// NewRouter assembles the public route table. Register and login stay
// open; everything else sits behind the session middleware.
func NewRouter(authHandler *AuthHandler, chatHandler *ChatHandler,
	tokens auth.TokenIssuer, log *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(log))

	r.HandleFunc("/api/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(SessionMiddleware(tokens))
	protected.HandleFunc("/auth/status", authHandler.Status).Methods(http.MethodGet)
	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/users", chatHandler.Users).Methods(http.MethodGet)
	protected.HandleFunc("/messages", chatHandler.Send).Methods(http.MethodPost)
	protected.HandleFunc("/messages", chatHandler.Feed).Methods(http.MethodGet)
	protected.HandleFunc("/messages/search", chatHandler.Search).Methods(http.MethodGet)
	protected.HandleFunc("/stats", chatHandler.Stats).Methods(http.MethodGet)

	return r
}

func loggingMiddleware(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("Request served",
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds())
		})
	}
}

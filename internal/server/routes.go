// Package server wires HTTP handlers into a router for the chat application
// via routing helpers.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures and returns the application router. The WebSocket
// endpoint is unthrottled; the status and health routes share a per-IP
// rate limit.
func SetupRoutes(hub *Hub, cfg *Config, log *slog.Logger) *mux.Router {
	h := NewHandlers(hub, cfg, log)
	limiter := newIPRateLimiter(cfg.RateLimit, log)

	r := mux.NewRouter()
	r.HandleFunc("/ws", h.WebSocketHandler)

	api := r.NewRoute().Subrouter()
	api.Use(limiter.middleware)
	api.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	api.HandleFunc("/", h.RootHandler).Methods(http.MethodGet)

	return r
}

// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the status root.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Handlers serves the WebSocket endpoint and the read-only HTTP surface.
type Handlers struct {
	hub      *Hub
	cfg      *Config
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandlers builds the handler set for hub. The upgrader enforces the
// configured origin allowlist.
func NewHandlers(hub *Hub, cfg *Config, log *slog.Logger) *Handlers {
	origins := newOriginPolicy(cfg.AllowedOrigins, log)
	return &Handlers{
		hub: hub,
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Online int    `json:"online"`
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Online  int    `json:"online"`
}

// WebSocketHandler handles WebSocket upgrade requests and manages client connections.
// It validates that the request uses the GET method, upgrades the HTTP connection
// to WebSocket, hands the new Client to the hub, and starts its read/write pumps.
func (h *Handlers) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	if h.hub.isShutdown() {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, h.hub, r.RemoteAddr, h.cfg, h.log)
	if !h.hub.Connect(client) {
		_ = conn.Close()
		return
	}

	h.hub.Go(client.writePump)
	h.hub.Go(client.readPump)
}

// HealthHandler reports liveness and the live online count.
func (h *Handlers) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Online: h.hub.OnlineCount(),
	})
}

// RootHandler reports the service status and the live online count.
func (h *Handlers) RootHandler(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, StatusResponse{
		Service: "global-chat",
		Status:  "running",
		Online:  h.hub.OnlineCount(),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn("Error writing JSON response", "error", err)
	}
}

// Package server coordinates session registration, chat fan-out, and
// departure announcements for the chat WebSocket system via the Hub type.
package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inboundFrame struct {
	conn    Conn
	payload []byte
}

// Hub owns the per-connection protocol state machine. Accept, frame and close
// events are processed one at a time by Run; the registry it mutates may be
// read concurrently through OnlineCount.
type Hub struct {
	registry    *Registry
	register    chan Conn
	unregister  chan Conn
	inbound     chan inboundFrame
	log         *slog.Logger
	welcome     string
	maxUsername int
	newID       func() string

	// Owned by the Run goroutine.
	conns        map[Conn]struct{}
	closing      map[Conn]struct{}
	pendingClose []Conn

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a Hub using the welcome text and username limit from cfg.
func NewHub(cfg *Config, log *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:    NewRegistry(),
		register:    make(chan Conn),
		unregister:  make(chan Conn),
		inbound:     make(chan inboundFrame),
		log:         log,
		welcome:     cfg.WelcomeMessage,
		maxUsername: cfg.MaxUsernameLength,
		newID:       uuid.NewString,
		conns:       make(map[Conn]struct{}),
		closing:     make(map[Conn]struct{}),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// OnlineCount returns the number of registered sessions.
func (h *Hub) OnlineCount() int {
	return h.registry.Count()
}

// Connect hands a freshly accepted connection to the hub. It reports false
// once the hub is shutting down.
func (h *Hub) Connect(c Conn) bool {
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Deliver hands one inbound frame from c to the hub.
func (h *Hub) Deliver(c Conn, payload []byte) {
	select {
	case h.inbound <- inboundFrame{conn: c, payload: payload}:
	case <-h.ctx.Done():
	}
}

// Disconnect reports that the transport for c has gone away.
func (h *Hub) Disconnect(c Conn) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// Go runs fn on a goroutine that Shutdown waits for.
func (h *Hub) Go(fn func()) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn()
	}()
}

// Run starts the hub's main event loop. It should be called in a separate
// goroutine and returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case c := <-h.register:
			h.onAccept(c)

		case c := <-h.unregister:
			h.onClose(c)

		case f := <-h.inbound:
			h.onFrame(f.conn, f.payload)
		}
	}
}

func (h *Hub) onAccept(c Conn) {
	if c == nil {
		h.log.Warn("Received nil connection; skipping")
		return
	}
	h.conns[c] = struct{}{}
	h.log.Info("Client connected", "remote", c.RemoteAddr(), "connections", len(h.conns))

	h.sendTo(c, newSystemMessage(h.welcome))
	h.flushPendingCloses()
}

func (h *Hub) onFrame(c Conn, payload []byte) {
	if _, open := h.conns[c]; !open {
		return
	}

	frame, err := ParseFrame(payload, h.maxUsername)
	if err != nil {
		h.log.Warn("Dropping invalid frame", "remote", c.RemoteAddr(), "error", err)
		return
	}

	switch req := frame.(type) {
	case RegisterRequest:
		h.handleRegister(c, req)
	case ChatRequest:
		h.handleChat(c, req)
	default:
		h.log.Debug("Ignoring frame with unknown type", "remote", c.RemoteAddr(), "type", frame.frameType())
	}
	h.flushPendingCloses()
}

func (h *Hub) onClose(c Conn) {
	h.closeConn(c)
	h.flushPendingCloses()
}

func (h *Hub) handleRegister(c Conn, req RegisterRequest) {
	if previous, ok := h.registry.Remove(c); ok {
		h.log.Info("Client re-registering", "remote", c.RemoteAddr(), "user_id", previous.ID, "username", previous.Username)
		h.announceDeparture(previous)
	}

	session, err := h.registry.Add(c, h.newID(), req.Username)
	if err != nil {
		h.log.Error("Registry rejected registration", "remote", c.RemoteAddr(), "error", err)
		return
	}
	online := h.registry.Count()
	h.log.Info("Client registered", "remote", c.RemoteAddr(), "user_id", session.ID, "username", session.Username, "online", online)

	h.sendTo(c, newRegisterSuccess(session))
	h.broadcast(newSystemMessage(joinedText(session.Username)))
	h.broadcast(newOnlineCount(online))
}

func (h *Hub) handleChat(c Conn, req ChatRequest) {
	session, ok := h.registry.Lookup(c)
	if !ok {
		h.log.Debug("Dropping chat from unregistered connection", "remote", c.RemoteAddr())
		return
	}
	h.broadcast(newChatMessage(session, req.Message))
}

// closeConn runs the close transition once per connection.
func (h *Hub) closeConn(c Conn) {
	if _, open := h.conns[c]; !open {
		return
	}
	delete(h.conns, c)
	delete(h.closing, c)
	c.Close()

	session, ok := h.registry.Remove(c)
	if !ok {
		h.log.Info("Client disconnected before registering", "remote", c.RemoteAddr(), "connections", len(h.conns))
		return
	}
	h.log.Info("Client unregistered", "remote", c.RemoteAddr(), "user_id", session.ID, "username", session.Username, "online", h.registry.Count())
	h.announceDeparture(session)
}

func (h *Hub) announceDeparture(s *Session) {
	h.broadcast(newSystemMessage(leftText(s.Username)))
	h.broadcast(newOnlineCount(h.registry.Count()))
}

func (h *Hub) sendTo(c Conn, msg any) {
	payload, err := encode(msg)
	if err != nil {
		h.log.Error("Failed to encode message", "error", err)
		return
	}
	h.deliver(c, payload)
}

// broadcast sends msg to every registered connection, sender included.
// Recipients are snapshotted under the registry lock and sent to outside it.
func (h *Hub) broadcast(msg any) {
	payload, err := encode(msg)
	if err != nil {
		h.log.Error("Failed to encode broadcast", "error", err)
		return
	}

	recipients := h.registry.Snapshot()
	h.log.Debug("Broadcasting message", "recipients", len(recipients))
	for _, c := range recipients {
		h.deliver(c, payload)
	}
}

func (h *Hub) deliver(c Conn, payload []byte) {
	if _, closing := h.closing[c]; closing {
		return
	}
	if !c.Send(payload) {
		h.log.Warn("Send failed; closing connection", "remote", c.RemoteAddr())
		h.closing[c] = struct{}{}
		h.pendingClose = append(h.pendingClose, c)
	}
}

// flushPendingCloses closes connections whose sends failed. Departure
// announcements may fail further sends, which are queued and handled here too.
func (h *Hub) flushPendingCloses() {
	for len(h.pendingClose) > 0 {
		c := h.pendingClose[0]
		h.pendingClose = h.pendingClose[1:]
		h.closeConn(c)
	}
}

// shutdownClients closes every live connection without announcements.
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	closed := 0
	for c := range h.conns {
		h.registry.Remove(c)
		c.Close()
		closed++
	}
	h.conns = make(map[Conn]struct{})
	h.closing = make(map[Conn]struct{})
	h.pendingClose = nil

	h.log.Info("Closed client connections", "count", closed)
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or context.DeadlineExceeded when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}

// isShutdown reports whether Shutdown has been called.
func (h *Hub) isShutdown() bool {
	return errors.Is(h.ctx.Err(), context.Canceled)
}

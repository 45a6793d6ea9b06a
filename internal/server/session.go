package server

// SessionState is the registration state of one connection.
type SessionState int

const (
	StateConnected SessionState = iota
	StateRegistered
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the server-side record of a registered connection.
// ID and Username are fixed for the lifetime of the registration.
type Session struct {
	Conn     Conn
	ID       string
	Username string
	State    SessionState
}

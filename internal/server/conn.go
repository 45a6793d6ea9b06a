//go:generate go run go.uber.org/mock/mockgen -source=conn.go -destination=mock_conn_test.go -package=server

package server

// Conn is the transport handle the hub delivers messages through.
// The registry references it but never owns it.
type Conn interface {
	// Send enqueues an encoded frame without blocking. It reports false when
	// the connection is closed or its outbound queue is full.
	Send(payload []byte) bool
	// Close tears the connection down. Calling it more than once is safe.
	Close()
	// RemoteAddr identifies the peer in logs.
	RemoteAddr() string
}

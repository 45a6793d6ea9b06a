package server

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, bufferSize int) *Client {
	t.Helper()
	cfg := NewConfig()
	cfg.SendBufferSize = bufferSize
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewClient(nil, NewHub(cfg, log), "127.0.0.1:5000", cfg, log)
}

func TestClient_SendFailsWhenQueueIsFull(t *testing.T) {
	c := newTestClient(t, 2)

	assert.True(t, c.Send([]byte("one")))
	assert.True(t, c.Send([]byte("two")))
	assert.False(t, c.Send([]byte("three")), "a full queue must not block the caller")

	ch := c.GetSendChan()
	assert.Equal(t, []byte("one"), <-ch)
	assert.True(t, c.Send([]byte("three")))
}

func TestClient_CloseStopsSendsAndIsIdempotent(t *testing.T) {
	c := newTestClient(t, 4)
	require.True(t, c.Send([]byte("queued")))

	c.Close()
	c.Close()

	assert.False(t, c.Send([]byte("after close")))

	ch := c.GetSendChan()
	msg, ok := <-ch
	assert.True(t, ok)
	assert.Equal(t, []byte("queued"), msg)
	_, ok = <-ch
	assert.False(t, ok, "send channel is closed after the queue drains")
}

func TestClient_RemoteAddr(t *testing.T) {
	c := newTestClient(t, 1)
	assert.Equal(t, "127.0.0.1:5000", c.RemoteAddr())
}

func TestIsExpectedCloseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"closed network connection", errors.New("read tcp: use of closed network connection"), true},
		{"close sent", errors.New("websocket: close sent"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"other", errors.New("connection reset by peer"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isExpectedCloseError(tt.err))
		})
	}
}

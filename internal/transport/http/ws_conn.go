package http

import (
	"sync"
	"sync/atomic"
)

// wsConn is the core.Conn side of a WebSocket: frames queued by Send are
// written by the connection's write loop.
type wsConn struct {
	id   string
	send chan []byte
	done chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
}

func newWSConn(id string, buffer int) *wsConn {
	if buffer <= 0 {
		buffer = 1
	}
	return &wsConn{
		id:   id,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

// Send never blocks. The send channel is never closed, so a racing Send after close is safe.
func (c *wsConn) Send(frame []byte) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *wsConn) IsOpen() bool {
	return !c.closed.Load()
}

func (c *wsConn) close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
	})
}

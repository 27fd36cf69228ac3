package core

// Conn is a live connection as seen by the core layer.
// Implementations must make Send and IsOpen safe for concurrent use.
type Conn interface {
	// ID identifies the connection in logs.
	ID() string
	// Send queues an encoded frame without blocking.
	// It returns false if the frame was dropped (connection closed or backlog full).
	Send(frame []byte) bool
	// IsOpen reports whether the underlying transport is still open.
	IsOpen() bool
}

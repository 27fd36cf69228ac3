package core

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/vovakirdan/wirechat-dm/internal/store"
	"github.com/vovakirdan/wirechat-dm/internal/store/sqlite"
)

// fakeConn records every frame it is sent.
type fakeConn struct {
	id string

	mu     sync.Mutex
	open   bool
	frames [][]byte
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, open: true}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return false
	}
	c.frames = append(c.frames, append([]byte(nil), frame...))
	return true
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
}

type testFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
}

func (c *fakeConn) Frames(t *testing.T) []testFrame {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]testFrame, 0, len(c.frames))
	for _, raw := range c.frames {
		var f testFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("conn %s received invalid frame %q: %v", c.id, raw, err)
		}
		out = append(out, f)
	}
	return out
}

func mustSingleFrame(t *testing.T, c *fakeConn, typ string) testFrame {
	t.Helper()

	frames := c.Frames(t)
	if len(frames) != 1 {
		t.Fatalf("conn %s: expected exactly 1 frame, got %d: %+v", c.id, len(frames), frames)
	}
	if frames[0].Type != typ {
		t.Fatalf("conn %s: expected frame %q, got %+v", c.id, typ, frames[0])
	}
	return frames[0]
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustUser(t *testing.T, st store.UserStore, name string) int64 {
	t.Helper()

	u, err := st.CreateUser(context.Background(), name, name+"@example.com", "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.ID
}

// stubStore fails every message operation with err and counts calls.
type stubStore struct {
	store.MessageStore
	err   error
	calls int
}

func (s *stubStore) CreateMessage(context.Context, string, int64, int64) (*store.Message, error) {
	s.calls++
	return nil, s.err
}

func (s *stubStore) UpdateMessageText(context.Context, int64, string) (*store.Message, error) {
	s.calls++
	return nil, s.err
}

func (s *stubStore) DeleteMessage(context.Context, int64) (*store.Message, error) {
	s.calls++
	return nil, s.err
}

func (s *stubStore) MarkRead(context.Context, int64, int64) (int64, error) {
	s.calls++
	return 0, s.err
}

func (s *stubStore) GetMessage(context.Context, int64) (*store.Message, error) {
	s.calls++
	return nil, s.err
}

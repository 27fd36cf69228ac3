package breaker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

type fakeStore struct {
	store.Store
	err   error
	calls int
}

func (f *fakeStore) GetMessage(_ context.Context, id int64) (*store.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &store.Message{ID: id}, nil
}

func TestBreakerOpensOnUnknownRequestErrors(t *testing.T) {
	inner := &fakeStore{err: fmt.Errorf("query message: %w", store.ErrUnknownRequest)}
	s := New(inner, Settings{MaxFailures: 2, OpenTimeout: time.Minute}, nil)

	for i := 0; i < 2; i++ {
		_, err := s.GetMessage(context.Background(), 1)
		require.ErrorIs(t, err, store.ErrUnknownRequest)
	}
	require.Equal(t, gobreaker.StateOpen, s.State())

	_, err := s.GetMessage(context.Background(), 1)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, 2, inner.calls, "open breaker must not reach the store")
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	inner := &fakeStore{err: fmt.Errorf("query message: %w", store.ErrNotFound)}
	s := New(inner, Settings{MaxFailures: 1, OpenTimeout: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		_, err := s.GetMessage(context.Background(), 1)
		require.ErrorIs(t, err, store.ErrNotFound)
	}
	require.Equal(t, gobreaker.StateClosed, s.State())
	require.Equal(t, 3, inner.calls)
}

func TestBreakerPassesResultThrough(t *testing.T) {
	s := New(&fakeStore{}, Settings{}, nil)

	msg, err := s.GetMessage(context.Background(), 42)
	require.NoError(t, err)
	require.EqualValues(t, 42, msg.ID)
}

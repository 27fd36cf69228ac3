// Package breaker guards the message store with a circuit breaker so a failing
// database is not hammered by every live frame.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

// Settings configures the breaker.
type Settings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Store wraps a store.Store and routes MessageStore calls through a circuit breaker.
// User and friend operations pass straight through.
type Store struct {
	store.Store
	cb *gobreaker.CircuitBreaker
}

var _ store.Store = (*Store)(nil)

// New wraps inner with a breaker named "message-store".
func New(inner store.Store, settings Settings, logger *zerolog.Logger) *Store {
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := settings.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "message-store",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			}
		},
		IsSuccessful: isSuccessful,
	})

	return &Store{Store: inner, cb: cb}
}

// isSuccessful treats domain outcomes (missing rows, duplicates, caller cancellation) as healthy.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrConflict) ||
		errors.Is(err, context.Canceled)
}

// State reports the current breaker state.
func (s *Store) State() gobreaker.State {
	return s.cb.State()
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if v, ok := res.(T); ok {
			return v, err
		}
		return zero, err
	}
	return res.(T), nil
}

func (s *Store) CreateMessage(ctx context.Context, text string, senderID, receiverID int64) (*store.Message, error) {
	return execute(s.cb, func() (*store.Message, error) {
		return s.Store.CreateMessage(ctx, text, senderID, receiverID)
	})
}

func (s *Store) GetMessage(ctx context.Context, id int64) (*store.Message, error) {
	return execute(s.cb, func() (*store.Message, error) {
		return s.Store.GetMessage(ctx, id)
	})
}

func (s *Store) UpdateMessageText(ctx context.Context, id int64, text string) (*store.Message, error) {
	return execute(s.cb, func() (*store.Message, error) {
		return s.Store.UpdateMessageText(ctx, id, text)
	})
}

func (s *Store) DeleteMessage(ctx context.Context, id int64) (*store.Message, error) {
	return execute(s.cb, func() (*store.Message, error) {
		return s.Store.DeleteMessage(ctx, id)
	})
}

func (s *Store) MarkRead(ctx context.Context, senderID, receiverID int64) (int64, error) {
	return execute(s.cb, func() (int64, error) {
		return s.Store.MarkRead(ctx, senderID, receiverID)
	})
}

func (s *Store) ListConversation(ctx context.Context, userID, peerID int64, limit int, beforeID *int64) ([]*store.Message, error) {
	return execute(s.cb, func() ([]*store.Message, error) {
		return s.Store.ListConversation(ctx, userID, peerID, limit, beforeID)
	})
}

func (s *Store) RecentChats(ctx context.Context, userID int64) ([]*store.ChatSummary, error) {
	return execute(s.cb, func() ([]*store.ChatSummary, error) {
		return s.Store.RecentChats(ctx, userID)
	})
}

func (s *Store) UnreadCount(ctx context.Context, userID, peerID int64) (int64, error) {
	return execute(s.cb, func() (int64, error) {
		return s.Store.UnreadCount(ctx, userID, peerID)
	})
}

package friends

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/wirechat-dm/internal/service/users"
	"github.com/vovakirdan/wirechat-dm/internal/store"
)

// Common errors for friend operations.
var (
	ErrCannotFriendSelf = errors.New("cannot add yourself as a friend")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrUserNotFound     = errors.New("user not found")
)

// Service provides friend management business logic.
type Service struct {
	store     store.Store
	directory *users.Directory
}

// New creates a new friends service.
func New(st store.Store, directory *users.Directory) *Service {
	return &Service{
		store:     st,
		directory: directory,
	}
}

// AddByEmail befriends the user registered under email. Friendships are mutual.
func (s *Service) AddByEmail(ctx context.Context, userID int64, email string) (users.Profile, error) {
	friend, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return users.Profile{}, ErrUserNotFound
		}
		return users.Profile{}, fmt.Errorf("get user by email: %w", err)
	}
	if friend.ID == userID {
		return users.Profile{}, ErrCannotFriendSelf
	}

	already, err := s.store.IsFriend(ctx, userID, friend.ID)
	if err != nil {
		return users.Profile{}, fmt.Errorf("check friendship: %w", err)
	}
	if already {
		return users.Profile{}, ErrAlreadyFriends
	}

	if err := s.store.AddFriendship(ctx, userID, friend.ID); err != nil {
		// Lost a race with a concurrent add.
		if errors.Is(err, store.ErrConflict) {
			return users.Profile{}, ErrAlreadyFriends
		}
		return users.Profile{}, fmt.Errorf("add friendship: %w", err)
	}

	s.directory.Remember(friend)
	return users.ProfileOf(friend), nil
}

// List returns the friends of userID.
func (s *Service) List(ctx context.Context, userID int64) ([]users.Profile, error) {
	list, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	out := make([]users.Profile, 0, len(list))
	for _, u := range list {
		out = append(out, users.ProfileOf(u))
	}
	return out, nil
}

// Remove ends the friendship in both directions. Removing a non-friend is not an error.
func (s *Service) Remove(ctx context.Context, userID, friendID int64) error {
	if err := s.store.DeleteFriendship(ctx, userID, friendID); err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	return nil
}

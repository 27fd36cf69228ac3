// Package users serves public user profiles backed by an LRU cache.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

const (
	defaultCacheSize = 1024
	minSearchLength  = 3
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrQueryTooShort = errors.New("search query too short")
)

// Profile is the public view of a user. It never carries the password hash.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProfileOf strips private fields from u.
func ProfileOf(u *store.User) Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Directory resolves profiles, caching hot ones.
// Names and emails never change after signup, so entries are not invalidated.
type Directory struct {
	store store.UserStore
	cache *lru.Cache[int64, Profile]
}

// NewDirectory creates a directory with room for size cached profiles.
func NewDirectory(st store.UserStore, size int) (*Directory, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[int64, Profile](size)
	if err != nil {
		return nil, fmt.Errorf("create profile cache: %w", err)
	}
	return &Directory{store: st, cache: cache}, nil
}

// Get returns the profile of userID.
func (d *Directory) Get(ctx context.Context, userID int64) (Profile, error) {
	if p, ok := d.cache.Get(userID); ok {
		return p, nil
	}

	u, err := d.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, fmt.Errorf("get user %d: %w", userID, err)
	}

	p := ProfileOf(u)
	d.cache.Add(userID, p)
	return p, nil
}

// Remember seeds the cache with u, e.g. right after it was loaded for another reason.
func (d *Directory) Remember(u *store.User) {
	d.cache.Add(u.ID, ProfileOf(u))
}

// List returns every registered user.
func (d *Directory) List(ctx context.Context) ([]Profile, error) {
	all, err := d.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return d.profiles(all, 0), nil
}

// Search finds users by name or email, excluding callerID.
func (d *Directory) Search(ctx context.Context, callerID int64, query string) ([]Profile, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		return nil, ErrQueryTooShort
	}

	found, err := d.store.SearchUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return d.profiles(found, callerID), nil
}

func (d *Directory) profiles(list []*store.User, skip int64) []Profile {
	out := make([]Profile, 0, len(list))
	for _, u := range list {
		if u.ID == skip {
			continue
		}
		d.Remember(u)
		out = append(out, ProfileOf(u))
	}
	return out
}

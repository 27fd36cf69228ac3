package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-dm/internal/store"
	"github.com/vovakirdan/wirechat-dm/internal/store/sqlite"
)

type countingStore struct {
	store.UserStore
	gets int
}

func (c *countingStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	c.gets++
	return c.UserStore.GetUserByID(ctx, id)
}

func newDirectory(t *testing.T) (*Directory, *countingStore) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	counting := &countingStore{UserStore: st}
	dir, err := NewDirectory(counting, 8)
	require.NoError(t, err)
	return dir, counting
}

func TestGetCachesProfiles(t *testing.T) {
	dir, counting := newDirectory(t)
	ctx := context.Background()

	u, err := counting.CreateUser(ctx, "alice", "alice@example.com", "secret-hash")
	require.NoError(t, err)

	p, err := dir.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, Profile{ID: u.ID, Name: "alice", Email: "alice@example.com"}, p)

	_, err = dir.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, counting.gets)

	_, err = dir.Get(ctx, 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearchExcludesCaller(t *testing.T) {
	dir, counting := newDirectory(t)
	ctx := context.Background()

	alice, err := counting.CreateUser(ctx, "alice", "alice@example.com", "h")
	require.NoError(t, err)
	_, err = counting.CreateUser(ctx, "alicia", "alicia@example.com", "h")
	require.NoError(t, err)

	_, err = dir.Search(ctx, alice.ID, "al")
	require.ErrorIs(t, err, ErrQueryTooShort)

	found, err := dir.Search(ctx, alice.ID, "ali")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "alicia", found[0].Name)

	// Search results warm the cache.
	_, err = dir.Get(ctx, found[0].ID)
	require.NoError(t, err)
	require.Zero(t, counting.gets)
}

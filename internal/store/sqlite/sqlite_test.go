package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUsers(t *testing.T, s *SQLiteStore, names ...string) []*store.User {
	t.Helper()

	ctx := context.Background()
	users := make([]*store.User, 0, len(names))
	for _, name := range names {
		u, err := s.CreateUser(ctx, name, name+"@example.com", "hash")
		require.NoError(t, err)
		users = append(users, u)
	}
	return users
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "alice2", "alice@example.com", "hash")
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	s := newTestStore(t)
	seedUsers(t, s, "alice", "alex", "alan", "bob", "charlie")

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{name: "prefix", query: "al", expected: []string{"alan", "alex", "alice"}},
		{name: "infix", query: "li", expected: []string{"alice", "charlie"}},
		{name: "none", query: "zz", expected: []string{}},
		{name: "case insensitive", query: "Bob", expected: []string{"bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.SearchUsers(context.Background(), tt.query)
			require.NoError(t, err)

			names := make([]string, 0, len(results))
			for _, u := range results {
				names = append(names, u.Name)
			}
			require.Equal(t, tt.expected, names)
		})
	}
}

func TestFriendshipIsBidirectional(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	users := seedUsers(t, s, "alice", "bob")
	alice, bob := users[0], users[1]

	require.NoError(t, s.AddFriendship(ctx, alice.ID, bob.ID))

	ok, err := s.IsFriend(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, ok)

	friends, err := s.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	require.Equal(t, bob.ID, friends[0].ID)

	err = s.AddFriendship(ctx, bob.ID, alice.ID)
	require.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, s.DeleteFriendship(ctx, bob.ID, alice.ID))
	ok, err = s.IsFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMessageLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	users := seedUsers(t, s, "alice", "bob")
	alice, bob := users[0], users[1]

	created, err := s.CreateMessage(ctx, "hi", alice.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "hi", created.Text)
	require.False(t, created.IsRead)
	require.False(t, created.CreatedAt.IsZero())

	updated, err := s.UpdateMessageText(ctx, created.ID, "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", updated.Text)
	require.Equal(t, created.SenderID, updated.SenderID)

	deleted, err := s.DeleteMessage(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", deleted.Text)
	require.Equal(t, bob.ID, deleted.ReceiverID)

	_, err = s.GetMessage(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UpdateMessageText(ctx, created.ID, "again")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.DeleteMessage(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateMessageUnknownUserIsNotUnknownRequest(t *testing.T) {
	s := newTestStore(t)
	users := seedUsers(t, s, "alice")

	_, err := s.CreateMessage(context.Background(), "hi", users[0].ID, 999)
	require.Error(t, err)
	require.NotErrorIs(t, err, store.ErrUnknownRequest)
}

func TestMarkReadFlipsOnlyUnread(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	users := seedUsers(t, s, "alice", "bob")
	alice, bob := users[0], users[1]

	first, err := s.CreateMessage(ctx, "already read", alice.ID, bob.ID)
	require.NoError(t, err)
	n, err := s.MarkRead(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	for _, text := range []string{"one", "two", "three"} {
		_, err := s.CreateMessage(ctx, text, alice.ID, bob.ID)
		require.NoError(t, err)
	}
	_, err = s.CreateMessage(ctx, "reply", bob.ID, alice.ID)
	require.NoError(t, err)

	unread, err := s.UnreadCount(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, unread)

	n, err = s.MarkRead(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	got, err := s.GetMessage(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, got.IsRead)

	unread, err = s.UnreadCount(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, unread, "reverse direction untouched")
}

func TestListConversationPaginates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	users := seedUsers(t, s, "alice", "bob", "carol")
	alice, bob, carol := users[0], users[1], users[2]

	var ids []int64
	for i := 0; i < 5; i++ {
		from, to := alice.ID, bob.ID
		if i%2 == 1 {
			from, to = bob.ID, alice.ID
		}
		m, err := s.CreateMessage(ctx, "m", from, to)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}
	_, err := s.CreateMessage(ctx, "other", alice.ID, carol.ID)
	require.NoError(t, err)

	page, err := s.ListConversation(ctx, alice.ID, bob.ID, 3, nil)
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.Equal(t, ids[4], page[0].ID)

	before := page[2].ID
	rest, err := s.ListConversation(ctx, bob.ID, alice.ID, 10, &before)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	require.Equal(t, ids[1], rest[0].ID)
	require.Equal(t, ids[0], rest[1].ID)
}

func TestRecentChats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	users := seedUsers(t, s, "alice", "bob", "carol")
	alice, bob, carol := users[0], users[1], users[2]

	_, err := s.CreateMessage(ctx, "to bob", alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, "from carol 1", carol.ID, alice.ID)
	require.NoError(t, err)
	last, err := s.CreateMessage(ctx, "from carol 2", carol.ID, alice.ID)
	require.NoError(t, err)

	chats, err := s.RecentChats(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)

	require.Equal(t, carol.ID, chats[0].PeerID)
	require.Equal(t, last.ID, chats[0].LastMessage.ID)
	require.EqualValues(t, 2, chats[0].UnreadCount)

	require.Equal(t, bob.ID, chats[1].PeerID)
	require.EqualValues(t, 0, chats[1].UnreadCount)
}

func TestBrokenSchemaIsUnknownRequest(t *testing.T) {
	s := newTestStore(t)
	users := seedUsers(t, s, "alice", "bob")

	_, err := s.db.Exec(`DROP TABLE messages`)
	require.NoError(t, err)

	_, err = s.CreateMessage(context.Background(), "hi", users[0].ID, users[1].ID)
	require.ErrorIs(t, err, store.ErrUnknownRequest)

	_, err = s.MarkRead(context.Background(), users[0].ID, users[1].ID)
	require.ErrorIs(t, err, store.ErrUnknownRequest)
}

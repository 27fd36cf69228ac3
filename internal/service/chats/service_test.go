package chats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-dm/internal/service/users"
	"github.com/vovakirdan/wirechat-dm/internal/store/sqlite"
)

func TestHistoryAndRecent(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	dir, err := users.NewDirectory(st, 16)
	require.NoError(t, err)
	svc := New(st, dir)
	ctx := context.Background()

	alice, err := st.CreateUser(ctx, "alice", "alice@example.com", "h")
	require.NoError(t, err)
	bob, err := st.CreateUser(ctx, "bob", "bob@example.com", "h")
	require.NoError(t, err)
	carol, err := st.CreateUser(ctx, "carol", "carol@example.com", "h")
	require.NoError(t, err)

	_, err = st.CreateMessage(ctx, "hi bob", alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = st.CreateMessage(ctx, "hi alice", bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = st.CreateMessage(ctx, "hey", carol.ID, alice.ID)
	require.NoError(t, err)

	history, err := svc.History(ctx, alice.ID, bob.ID, 0, nil)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "hi alice", history[0].Text)

	_, err = svc.History(ctx, alice.ID, 999, 10, nil)
	require.ErrorIs(t, err, users.ErrUserNotFound)

	recent, err := svc.Recent(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "carol", recent[0].Peer.Name)
	require.EqualValues(t, 1, recent[0].UnreadCount)
	require.Equal(t, "bob", recent[1].Peer.Name)
	require.Equal(t, "hi alice", recent[1].LastMessage.Text)
}

// Package chats serves conversation history and the recent chats overview.
package chats

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirechat-dm/internal/service/users"
	"github.com/vovakirdan/wirechat-dm/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	profileWorkers  = 4
)

// Summary is one entry of the recent chats list.
type Summary struct {
	Peer        users.Profile
	LastMessage store.Message
	UnreadCount int64
}

// Service reads conversations.
type Service struct {
	messages  store.MessageStore
	directory *users.Directory
}

func New(messages store.MessageStore, directory *users.Directory) *Service {
	return &Service{messages: messages, directory: directory}
}

// History returns a page of the conversation between userID and peerID, newest first.
func (s *Service) History(ctx context.Context, userID, peerID int64, limit int, beforeID *int64) ([]*store.Message, error) {
	if _, err := s.directory.Get(ctx, peerID); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}

	msgs, err := s.messages.ListConversation(ctx, userID, peerID, limit, beforeID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return msgs, nil
}

// Recent returns one summary per peer userID has talked to, most recent first.
// Peer profiles are resolved concurrently; a peer that no longer exists is dropped.
func (s *Service) Recent(ctx context.Context, userID int64) ([]Summary, error) {
	chats, err := s.messages.RecentChats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recent chats: %w", err)
	}

	summaries := make([]Summary, len(chats))
	missing := make([]bool, len(chats))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(profileWorkers)
	for i, chat := range chats {
		g.Go(func() error {
			peer, err := s.directory.Get(gCtx, chat.PeerID)
			if errors.Is(err, users.ErrUserNotFound) {
				missing[i] = true
				return nil
			}
			if err != nil {
				return err
			}
			summaries[i] = Summary{Peer: peer, LastMessage: chat.LastMessage, UnreadCount: chat.UnreadCount}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve peers: %w", err)
	}

	out := summaries[:0]
	for i, sum := range summaries {
		if !missing[i] {
			out = append(out, sum)
		}
	}
	return out, nil
}

package http

import (
	"github.com/vovakirdan/wirechat-dm/internal/core"
	"github.com/vovakirdan/wirechat-dm/internal/proto"
	"github.com/vovakirdan/wirechat-dm/internal/service/chats"
	"github.com/vovakirdan/wirechat-dm/internal/service/users"
	"github.com/vovakirdan/wirechat-dm/internal/store"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ChatSummaryResponse is one entry of GET /api/chats/recent.
type ChatSummaryResponse struct {
	Peer        users.Profile        `json:"peer"`
	LastMessage proto.MessagePayload `json:"lastMessage"`
	UnreadCount int64                `json:"unreadCount"`
}

func messagesToResponse(msgs []*store.Message) []proto.MessagePayload {
	out := make([]proto.MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, core.MessagePayload(m))
	}
	return out
}

func summariesToResponse(list []chats.Summary) []ChatSummaryResponse {
	out := make([]ChatSummaryResponse, 0, len(list))
	for i := range list {
		out = append(out, ChatSummaryResponse{
			Peer:        list[i].Peer,
			LastMessage: core.MessagePayload(&list[i].LastMessage),
			UnreadCount: list[i].UnreadCount,
		})
	}
	return out
}

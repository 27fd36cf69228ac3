package core

import (
	"github.com/vovakirdan/wirechat-dm/internal/proto"
	"github.com/vovakirdan/wirechat-dm/internal/store"
)

// MessagePayload converts a persisted message to its wire form.
func MessagePayload(m *store.Message) proto.MessagePayload {
	return proto.MessagePayload{
		ID:         m.ID,
		Text:       m.Text,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
}

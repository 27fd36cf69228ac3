package core

import (
	"context"
	"fmt"

	"github.com/vovakirdan/wirechat-dm/internal/proto"
)

func (h *Hub) createMessage(ctx context.Context, actor int64, e CreateMessage) (proto.Outbound, []int64, error) {
	senderID := e.SenderID
	if h.opts.EnforceSender {
		senderID = actor
	}

	msg, err := h.store.CreateMessage(ctx, e.Text, senderID, e.ReceiverID)
	if err != nil {
		return proto.Outbound{}, nil, fmt.Errorf("create message: %w", err)
	}

	frame := proto.Outbound{Type: proto.OutboundTypeCreated, Payload: MessagePayload(msg)}
	return frame, []int64{msg.SenderID, msg.ReceiverID}, nil
}

func (h *Hub) updateMessage(ctx context.Context, actor int64, e UpdateMessage) (proto.Outbound, []int64, error) {
	if err := h.checkParticipant(ctx, actor, e.ID); err != nil {
		return proto.Outbound{}, nil, err
	}

	msg, err := h.store.UpdateMessageText(ctx, e.ID, e.NewText)
	if err != nil {
		return proto.Outbound{}, nil, fmt.Errorf("update message %d: %w", e.ID, err)
	}

	frame := proto.Outbound{Type: proto.OutboundTypeUpdated, Payload: MessagePayload(msg)}
	return frame, []int64{msg.SenderID, msg.ReceiverID}, nil
}

func (h *Hub) deleteMessage(ctx context.Context, actor int64, e DeleteMessage) (proto.Outbound, []int64, error) {
	if err := h.checkParticipant(ctx, actor, e.ID); err != nil {
		return proto.Outbound{}, nil, err
	}

	// The returned record is captured before deletion so the delivery set survives it.
	msg, err := h.store.DeleteMessage(ctx, e.ID)
	if err != nil {
		return proto.Outbound{}, nil, fmt.Errorf("delete message %d: %w", e.ID, err)
	}

	frame := proto.Outbound{Type: proto.OutboundTypeDeleted, Payload: MessagePayload(msg)}
	return frame, []int64{msg.SenderID, msg.ReceiverID}, nil
}

func (h *Hub) markRead(ctx context.Context, actor int64, e MarkRead) (proto.Outbound, []int64, error) {
	if h.opts.EnforceSender && actor != e.SenderID && actor != e.ReceiverID {
		return proto.Outbound{}, nil, ErrNotParticipant
	}

	n, err := h.store.MarkRead(ctx, e.SenderID, e.ReceiverID)
	if err != nil {
		return proto.Outbound{}, nil, fmt.Errorf("mark read: %w", err)
	}
	h.log.Debug().Int64("sender_id", e.SenderID).Int64("receiver_id", e.ReceiverID).Int64("count", n).Msg("messages marked read")

	frame := proto.Outbound{
		Type:    proto.OutboundTypeRead,
		Payload: proto.ReadPayload{SenderID: e.SenderID, ReceiverID: e.ReceiverID},
	}
	return frame, []int64{e.SenderID, e.ReceiverID}, nil
}

func (h *Hub) checkParticipant(ctx context.Context, actor, messageID int64) error {
	if !h.opts.EnforceSender {
		return nil
	}
	msg, err := h.store.GetMessage(ctx, messageID)
	if err != nil {
		return fmt.Errorf("load message %d: %w", messageID, err)
	}
	if !msg.HasParticipant(actor) {
		return ErrNotParticipant
	}
	return nil
}

package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	InboundTypeCreate = "message:create"
	InboundTypeUpdate = "message:update"
	InboundTypeDelete = "message:delete"
	InboundTypeRead   = "message:read"

	OutboundTypeCreated = "message:created"
	OutboundTypeUpdated = "message:updated"
	OutboundTypeDeleted = "message:deleted"
	OutboundTypeRead    = "message:read"
	OutboundTypeError   = "error"
)

// CreatePayload asks the server to persist and deliver a new message.
type CreatePayload struct {
	Text       string `json:"text" validate:"required"`
	SenderID   int64  `json:"senderId" validate:"required,gt=0"`
	ReceiverID int64  `json:"receiverId" validate:"required,gt=0"`
}

// UpdatePayload replaces the text of an existing message.
type UpdatePayload struct {
	ID      int64  `json:"id" validate:"required,gt=0"`
	NewText string `json:"newText" validate:"required"`
}

// DeletePayload removes a message.
type DeletePayload struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// ReadPayload marks every unread message from SenderID to ReceiverID as read.
// The same shape is echoed back in the message:read outbound frame.
type ReadPayload struct {
	SenderID   int64 `json:"senderId" validate:"required,gt=0"`
	ReceiverID int64 `json:"receiverId" validate:"required,gt=0"`
}

// Outbound is the envelope for frames sent to the client.
// Success frames carry Payload; error frames carry Message.
type Outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
}

// MessagePayload is the wire form of a persisted message.
type MessagePayload struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ErrorFrame builds an error frame with a human-readable message.
func ErrorFrame(message string) Outbound {
	return Outbound{Type: OutboundTypeError, Message: message}
}

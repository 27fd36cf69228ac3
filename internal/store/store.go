package store

import (
	"context"
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Friend represents one direction of a friendship. Friendships are always stored in both directions.
type Friend struct {
	ID        int64
	UserID    int64
	FriendID  int64
	CreatedAt time.Time
}

// Message represents a persisted direct message.
type Message struct {
	ID         int64
	Text       string
	SenderID   int64
	ReceiverID int64
	IsRead     bool
	CreatedAt  time.Time
}

// HasParticipant reports whether userID sent or received the message.
func (m *Message) HasParticipant(userID int64) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// ChatSummary is the latest message exchanged with a peer plus the number of
// messages from that peer the user has not read yet.
type ChatSummary struct {
	PeerID      int64
	LastMessage Message
	UnreadCount int64
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsers lists all users ordered by ID.
	ListUsers(ctx context.Context) ([]*User, error)

	// SearchUsers searches for users by name or email.
	SearchUsers(ctx context.Context, query string) ([]*User, error)
}

// FriendStore handles friendship persistence.
type FriendStore interface {
	// AddFriendship stores the friendship in both directions atomically.
	AddFriendship(ctx context.Context, userID, friendID int64) error

	// IsFriend checks if userID has friendID in its friend list.
	IsFriend(ctx context.Context, userID, friendID int64) (bool, error)

	// ListFriends lists the users that userID is friends with.
	ListFriends(ctx context.Context, userID int64) ([]*User, error)

	// DeleteFriendship removes the friendship in both directions.
	DeleteFriendship(ctx context.Context, userID, friendID int64) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a new unread message.
	CreateMessage(ctx context.Context, text string, senderID, receiverID int64) (*Message, error)

	// GetMessage retrieves a message by ID.
	GetMessage(ctx context.Context, id int64) (*Message, error)

	// UpdateMessageText replaces the text of a message and returns the updated record.
	UpdateMessageText(ctx context.Context, id int64, text string) (*Message, error)

	// DeleteMessage removes a message and returns the record as it was before deletion.
	DeleteMessage(ctx context.Context, id int64) (*Message, error)

	// MarkRead flags every unread message from senderID to receiverID as read
	// and returns how many messages changed.
	MarkRead(ctx context.Context, senderID, receiverID int64) (int64, error)

	// ListConversation returns messages exchanged between two users, newest first.
	// If beforeID is provided, only messages with a smaller ID are returned.
	ListConversation(ctx context.Context, userID, peerID int64, limit int, beforeID *int64) ([]*Message, error)

	// RecentChats returns one summary per peer the user has exchanged messages with, most recent first.
	RecentChats(ctx context.Context, userID int64) ([]*ChatSummary, error)

	// UnreadCount counts unread messages from peerID to userID.
	UnreadCount(ctx context.Context, userID, peerID int64) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	FriendStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

const (
	dsnParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	defaultConversationLimit = 50
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens the database at dbPath and applies pending migrations.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup opens the database and runs a setup function instead of the bundled migrations.
// Useful for tests that need a hand-crafted schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// classify maps driver errors onto the store error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code {
		case sqlite3.ErrConstraint:
			if sqErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
				return fmt.Errorf("%s: %w: %w", op, store.ErrConflict, err)
			}
			return fmt.Errorf("%s: %w", op, err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrFull, sqlite3.ErrIoErr:
			return fmt.Errorf("%s: %w", op, err)
		default:
			return fmt.Errorf("%s: %w: %w", op, store.ErrUnknownRequest, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ==== UserStore implementation ====

const userColumns = `id, name, email, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var user store.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, name, email, passwordHash)
	if err != nil {
		return nil, classify("insert user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify("query user", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, classify("query user by email", err)
	}
	return user, nil
}

// ListUsers lists all users ordered by ID.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	return s.queryUsers(ctx, "list users", query)
}

// SearchUsers searches for users whose name or email contains query.
func (s *SQLiteStore) SearchUsers(ctx context.Context, query string) ([]*store.User, error) {
	pattern := "%" + query + "%"
	stmt := `
		SELECT ` + userColumns + `
		FROM users
		WHERE name LIKE ? OR email LIKE ?
		ORDER BY name
		LIMIT 20
	`
	return s.queryUsers(ctx, "search users", stmt, pattern, pattern)
}

func (s *SQLiteStore) queryUsers(ctx context.Context, op, query string, args ...any) ([]*store.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	users := make([]*store.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, classify(op, rows.Err())
}

// ==== FriendStore implementation ====

// AddFriendship stores the friendship in both directions atomically.
func (s *SQLiteStore) AddFriendship(ctx context.Context, userID, friendID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO friends (user_id, friend_id) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, query, userID, friendID); err != nil {
		return classify("insert friendship", err)
	}
	if _, err := tx.ExecContext(ctx, query, friendID, userID); err != nil {
		return classify("insert reverse friendship", err)
	}

	if err := tx.Commit(); err != nil {
		return classify("commit friendship", err)
	}
	return nil
}

// IsFriend checks if userID has friendID in its friend list.
func (s *SQLiteStore) IsFriend(ctx context.Context, userID, friendID int64) (bool, error) {
	query := `SELECT 1 FROM friends WHERE user_id = ? AND friend_id = ?`
	var exists int
	err := s.db.QueryRowContext(ctx, query, userID, friendID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, classify("query friendship", err)
	}
	return true, nil
}

// ListFriends lists the users that userID is friends with.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID int64) ([]*store.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.created_at, u.updated_at
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = ?
		ORDER BY u.name
	`
	return s.queryUsers(ctx, "list friends", query, userID)
}

// DeleteFriendship removes the friendship in both directions.
func (s *SQLiteStore) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	query := `
		DELETE FROM friends
		WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)
	`
	if _, err := s.db.ExecContext(ctx, query, userID, friendID, friendID, userID); err != nil {
		return classify("delete friendship", err)
	}
	return nil
}

// ==== MessageStore implementation ====

const messageColumns = `id, text, sender_id, receiver_id, is_read, created_at`

func scanMessage(row interface{ Scan(...any) error }) (*store.Message, error) {
	var msg store.Message
	if err := row.Scan(
		&msg.ID,
		&msg.Text,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.IsRead,
		&msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

func getMessage(ctx context.Context, q queryer, id int64) (*store.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	return scanMessage(q.QueryRowContext(ctx, query, id))
}

// CreateMessage persists a new unread message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, text string, senderID, receiverID int64) (*store.Message, error) {
	query := `
		INSERT INTO messages (text, sender_id, receiver_id, is_read, created_at)
		VALUES (?, ?, ?, 0, ?)
	`
	result, err := s.db.ExecContext(ctx, query, text, senderID, receiverID, time.Now().UTC())
	if err != nil {
		return nil, classify("insert message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetMessage(ctx, id)
}

// GetMessage retrieves a message by ID.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*store.Message, error) {
	msg, err := getMessage(ctx, s.db, id)
	if err != nil {
		return nil, classify("query message", err)
	}
	return msg, nil
}

// UpdateMessageText replaces the text of a message and returns the updated record.
func (s *SQLiteStore) UpdateMessageText(ctx context.Context, id int64, text string) (*store.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `UPDATE messages SET text = ? WHERE id = ?`, text, id)
	if err != nil {
		return nil, classify("update message", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("update message %d: %w", id, store.ErrNotFound)
	}

	msg, err := getMessage(ctx, tx, id)
	if err != nil {
		return nil, classify("query updated message", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify("commit update", err)
	}
	return msg, nil
}

// DeleteMessage removes a message and returns the record as it was before deletion.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id int64) (*store.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	msg, err := getMessage(ctx, tx, id)
	if err != nil {
		return nil, classify("query message", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id); err != nil {
		return nil, classify("delete message", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify("commit delete", err)
	}
	return msg, nil
}

// MarkRead flags every unread message from senderID to receiverID as read.
func (s *SQLiteStore) MarkRead(ctx context.Context, senderID, receiverID int64) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = 1
		WHERE sender_id = ? AND receiver_id = ? AND is_read = 0
	`
	result, err := s.db.ExecContext(ctx, query, senderID, receiverID)
	if err != nil {
		return 0, classify("mark read", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}

// ListConversation returns messages exchanged between two users, newest first.
func (s *SQLiteStore) ListConversation(ctx context.Context, userID, peerID int64, limit int, beforeID *int64) ([]*store.Message, error) {
	if limit <= 0 {
		limit = defaultConversationLimit
	}

	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
	`
	args := []any{userID, peerID, peerID, userID}
	if beforeID != nil {
		query += ` AND id < ?`
		args = append(args, *beforeID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query conversation", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0, limit)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, classify("query conversation", rows.Err())
}

// RecentChats returns one summary per peer the user has exchanged messages with, most recent first.
func (s *SQLiteStore) RecentChats(ctx context.Context, userID int64) ([]*store.ChatSummary, error) {
	query := `
		SELECT p.peer_id, m.id, m.text, m.sender_id, m.receiver_id, m.is_read, m.created_at,
			(SELECT COUNT(*) FROM messages u
			 WHERE u.sender_id = p.peer_id AND u.receiver_id = ? AND u.is_read = 0)
		FROM (
			SELECT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS peer_id,
				MAX(id) AS last_id
			FROM messages
			WHERE sender_id = ? OR receiver_id = ?
			GROUP BY peer_id
		) p
		JOIN messages m ON m.id = p.last_id
		ORDER BY m.id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, userID, userID, userID)
	if err != nil {
		return nil, classify("query recent chats", err)
	}
	defer rows.Close()

	chats := make([]*store.ChatSummary, 0)
	for rows.Next() {
		var chat store.ChatSummary
		msg := &chat.LastMessage
		if err := rows.Scan(
			&chat.PeerID,
			&msg.ID,
			&msg.Text,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.IsRead,
			&msg.CreatedAt,
			&chat.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan chat summary: %w", err)
		}
		chats = append(chats, &chat)
	}
	return chats, classify("query recent chats", rows.Err())
}

// UnreadCount counts unread messages from peerID to userID.
func (s *SQLiteStore) UnreadCount(ctx context.Context, userID, peerID int64) (int64, error) {
	query := `
		SELECT COUNT(*) FROM messages
		WHERE sender_id = ? AND receiver_id = ? AND is_read = 0
	`
	var count int64
	if err := s.db.QueryRowContext(ctx, query, peerID, userID).Scan(&count); err != nil {
		return 0, classify("count unread", err)
	}
	return count, nil
}

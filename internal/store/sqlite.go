// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/chat/link persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys so link rows cascade with their chat
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			state   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chats (
			chat_id       INTEGER PRIMARY KEY,
			username      TEXT,
			title         TEXT NOT NULL,
			kind          TEXT NOT NULL,
			owner_user_id INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chats_owner ON chats(owner_user_id);
		CREATE INDEX IF NOT EXISTS idx_chats_username ON chats(username);

		CREATE TABLE IF NOT EXISTS links (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id                INTEGER NOT NULL REFERENCES chats(chat_id) ON DELETE CASCADE,
			destination_contact_id TEXT,
			user_id                INTEGER NOT NULL,
			created_at             TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_links_chat ON links(chat_id);
		CREATE INDEX IF NOT EXISTS idx_links_user ON links(user_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// UpsertUserState inserts the user if absent, otherwise overwrites its state.
func (s *SQLiteStore) UpsertUserState(ctx context.Context, userID int64, state State) error {
	query := `
		INSERT INTO users (user_id, state) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET state = excluded.state
	`

	if _, err := s.db.ExecContext(ctx, query, userID, string(state)); err != nil {
		return fmt.Errorf("upserting user state: %w", err)
	}

	s.logger.Debug("user state set", "user_id", userID, "state", state)
	return nil
}

// GetUserState returns the conversation state for a user, or the empty string
// when the user has never been seen. An unknown user is not an error.
func (s *SQLiteStore) GetUserState(ctx context.Context, userID int64) (State, error) {
	query := `SELECT state FROM users WHERE user_id = ?`

	var state string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&state)
	if err == sql.ErrNoRows {
		return StateUnknown, nil
	}
	if err != nil {
		return StateUnknown, fmt.Errorf("querying user state: %w", err)
	}

	return State(state), nil
}

// AddChatIfAbsent inserts the chat and returns true, or returns false without
// mutation when a chat with the same chat_id already exists.
func (s *SQLiteStore) AddChatIfAbsent(ctx context.Context, chat Chat) (bool, error) {
	query := `
		INSERT INTO chats (chat_id, username, title, kind, owner_user_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO NOTHING
	`

	// Store empty usernames as NULL so username matching never hits them
	var username any
	if chat.Username != "" {
		username = chat.Username
	}

	result, err := s.db.ExecContext(ctx, query, chat.ChatID, username, chat.Title, chat.Kind, chat.OwnerUserID)
	if err != nil {
		return false, fmt.Errorf("inserting chat: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return false, nil
	}

	s.logger.Debug("chat added", "chat_id", chat.ChatID, "title", chat.Title, "kind", chat.Kind)
	return true, nil
}

// RemoveChat deletes the chat and all of its links. It is idempotent and
// reports true even when nothing existed, so callers never need a not-found
// branch. The two deletes run in one transaction.
func (s *SQLiteStore) RemoveChat(ctx context.Context, chatID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE chat_id = ?`, chatID); err != nil {
		return false, fmt.Errorf("deleting links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chats WHERE chat_id = ?`, chatID); err != nil {
		return false, fmt.Errorf("deleting chat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing chat removal: %w", err)
	}

	s.logger.Debug("chat removed", "chat_id", chatID)
	return true, nil
}

// ListChatTitles returns the titles of all chats added by the given user,
// oldest first.
func (s *SQLiteStore) ListChatTitles(ctx context.Context, ownerUserID int64) ([]string, error) {
	query := `SELECT title FROM chats WHERE owner_user_id = ? ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("querying chat titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning chat title: %w", err)
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat titles: %w", err)
	}

	return titles, nil
}

// CreateLink resolves target to a chat and inserts a link with no destination
// contact yet. A target starting with "@" matches the chat username (without
// the "@"), anything else matches the chat title. Returns false when no chat
// matches.
func (s *SQLiteStore) CreateLink(ctx context.Context, userID int64, target string) (bool, error) {
	var row *sql.Row
	if strings.HasPrefix(target, "@") {
		row = s.db.QueryRowContext(ctx, `SELECT chat_id FROM chats WHERE username = ?`, strings.TrimPrefix(target, "@"))
	} else {
		row = s.db.QueryRowContext(ctx, `SELECT chat_id FROM chats WHERE title = ?`, target)
	}

	var chatID int64
	err := row.Scan(&chatID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolving link target: %w", err)
	}

	query := `
		INSERT INTO links (chat_id, destination_contact_id, user_id, created_at)
		VALUES (?, NULL, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, chatID, userID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return false, fmt.Errorf("inserting link: %w", err)
	}

	s.logger.Debug("link created", "user_id", userID, "chat_id", chatID)
	return true, nil
}

// AttachDestinationContact fills the contact id of the most recently created
// link for this user that still has none. Returns false without mutation when
// no such link exists.
func (s *SQLiteStore) AttachDestinationContact(ctx context.Context, userID int64, contactID string) (bool, error) {
	query := `
		UPDATE links SET destination_contact_id = ?
		WHERE id = (
			SELECT id FROM links
			WHERE user_id = ? AND destination_contact_id IS NULL
			ORDER BY id DESC LIMIT 1
		)
	`

	result, err := s.db.ExecContext(ctx, query, contactID, userID)
	if err != nil {
		return false, fmt.Errorf("attaching destination contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return false, nil
	}

	s.logger.Debug("destination contact attached", "user_id", userID, "contact_id", contactID)
	return true, nil
}

// ListDestinationContacts returns every non-null destination contact id linked
// to the chat, oldest link first. Duplicate contacts are preserved.
func (s *SQLiteStore) ListDestinationContacts(ctx context.Context, chatID int64) ([]string, error) {
	query := `
		SELECT destination_contact_id FROM links
		WHERE chat_id = ? AND destination_contact_id IS NOT NULL
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("querying destination contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contacts []string
	for rows.Next() {
		var contact string
		if err := rows.Scan(&contact); err != nil {
			return nil, fmt.Errorf("scanning destination contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination contacts: %w", err)
	}

	return contacts, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

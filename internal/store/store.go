// ABOUTME: Store interface and data types for cobalt persistence
// ABOUTME: Defines User, Chat, Link structs and the Store interface for database operations

package store

import (
	"context"
	"time"
)

// State is a user's position in the add-link dialog. The closed set below is
// the only vocabulary ever persisted; StateUnknown marks a user the relay has
// never spoken to.
type State string

// Conversation states for the add-link dialog.
const (
	StateUnknown            State = ""
	StateStart              State = "start"
	StateAddLink            State = "add_link"
	StateAddLinkDestination State = "add_link_destination_part"
)

// User is a Telegram account the relay has talked to in a private chat.
type User struct {
	UserID int64
	State  State
}

// Chat is a Telegram group, supergroup or channel the bot was promoted in.
// OwnerUserID is the user whose action added the bot.
type Chat struct {
	ChatID      int64
	Username    string // empty for chats without a public username
	Title       string
	Kind        string // "private", "group", "supergroup", "channel"
	OwnerUserID int64
}

// Link associates a chat with one Wemessenger contact. DestinationContactID
// is nil between the two phases of link creation; the newest nil-contact link
// per user is the one the next attach targets.
type Link struct {
	ID                   int64
	ChatID               int64
	DestinationContactID *string
	UserID               int64
	CreatedAt            time.Time
}

// Store defines the persistence contract used by the relay. Lookup misses are
// reported in-band (false / empty), errors mean the storage layer itself failed.
type Store interface {
	// User conversation state
	UpsertUserState(ctx context.Context, userID int64, state State) error
	GetUserState(ctx context.Context, userID int64) (State, error)

	// Chats
	AddChatIfAbsent(ctx context.Context, chat Chat) (bool, error)
	RemoveChat(ctx context.Context, chatID int64) (bool, error)
	ListChatTitles(ctx context.Context, ownerUserID int64) ([]string, error)

	// Links
	CreateLink(ctx context.Context, userID int64, target string) (bool, error)
	AttachDestinationContact(ctx context.Context, userID int64, contactID string) (bool, error)
	ListDestinationContacts(ctx context.Context, chatID int64) ([]string, error)

	// Close releases any resources held by the store
	Close() error
}

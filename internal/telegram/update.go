// ABOUTME: Telegram Bot API webhook payload types
// ABOUTME: Mirrors the JSON shapes of update, message and chat member objects

package telegram

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Update is the top-level webhook payload. Exactly one of Message,
// MyChatMember or ChannelPost is expected to be set.
type Update struct {
	UpdateID     int64              `json:"update_id"`
	Message      *Message           `json:"message,omitempty"`
	MyChatMember *ChatMemberUpdated `json:"my_chat_member,omitempty"`
	ChannelPost  *Message           `json:"channel_post,omitempty"`
}

// Message is a message or channel post.
type Message struct {
	MessageID  int64           `json:"message_id"`
	From       *User           `json:"from,omitempty"`
	SenderChat *Chat           `json:"sender_chat,omitempty"`
	Chat       Chat            `json:"chat"`
	Date       int64           `json:"date"`
	Text       string          `json:"text,omitempty"`
	Entities   []MessageEntity `json:"entities,omitempty"`
}

// MessageEntity marks a span of special text within a message.
type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// User is a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat is a private, group, supergroup or channel chat.
type Chat struct {
	ID        int64  `json:"id"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	Type      string `json:"type"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// ChatMemberUpdated reports a change of the bot's status in a chat.
type ChatMemberUpdated struct {
	Chat          Chat       `json:"chat"`
	From          User       `json:"from"`
	Date          int64      `json:"date"`
	OldChatMember ChatMember `json:"old_chat_member"`
	NewChatMember ChatMember `json:"new_chat_member"`
}

// ChatMember is the bot's membership record in a chat. Privileges collects the
// names of all boolean flags present on the record (can_delete_messages,
// is_anonymous, ...), sorted for stable comparison.
type ChatMember struct {
	Status     string
	Privileges []string
}

// UnmarshalJSON decodes the status field and harvests every boolean flag name
// from the raw record.
func (m *ChatMember) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decoding chat member: %w", err)
	}

	if status, ok := fields["status"].(string); ok {
		m.Status = status
	}

	for name, value := range fields {
		if _, ok := value.(bool); ok {
			m.Privileges = append(m.Privileges, name)
		}
	}
	sort.Strings(m.Privileges)

	return nil
}

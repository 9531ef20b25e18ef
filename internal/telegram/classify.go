// ABOUTME: Event classifier turning raw webhook payloads into typed events
// ABOUTME: Distinguishes commands, plain messages, membership changes and channel posts

package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedUpdate is returned when a payload carries none of the recognized
// top-level sections. Callers must not proceed past it.
var ErrMalformedUpdate = errors.New("update carries no message, my_chat_member or channel_post section")

// Kind discriminates the closed set of event variants.
type Kind string

// Event kinds.
const (
	KindCommand          Kind = "command"
	KindPlainMessage     Kind = "plain_message"
	KindMembershipChange Kind = "membership_change"
	KindChannelPost      Kind = "channel_post"
)

// chatKindLabels maps Telegram chat types to the human-readable labels used in
// bot replies. Unrecognized kinds label as "". Initialized once, never mutated.
var chatKindLabels = map[string]string{
	"private":    "private chat",
	"group":      "group",
	"supergroup": "supergroup",
	"channel":    "channel",
}

// EventChat identifies the chat an event happened in.
type EventChat struct {
	ID       int64
	Title    string
	Username string
	Kind     string
}

// KindLabel returns the human-readable label for the chat's kind, or "" for
// kinds the relay does not recognize.
func (c EventChat) KindLabel() string {
	return chatKindLabels[c.Kind]
}

// EventSender identifies who produced an event. For channel posts it carries
// the posting chat's own identity, since channels have no human sender.
type EventSender struct {
	ID        int64
	IsBot     bool
	FirstName string
	LastName  string
	Username  string
}

// Event is the typed result of classifying one webhook payload.
// OldStatus, NewStatus and Privileges are only set for membership changes.
type Event struct {
	Kind      Kind
	UpdateID  int64
	MessageID int64
	Chat      EventChat
	Sender    EventSender
	Text      string
	Date      int64

	OldStatus  string
	NewStatus  string
	Privileges []string
}

// IsCommand reports whether the event is a command invocation of name.
// The comparison is case-sensitive and name may be given with or without its
// leading slash; the message text must carry one.
func (e *Event) IsCommand(name string) bool {
	return e.Kind == KindCommand && e.Text == "/"+strings.TrimPrefix(name, "/")
}

// IsPrivate reports whether the event happened in a private one-on-one chat:
// the chat kind is private and the sender id equals the chat id. The kind
// check matters because channel posts also carry sender id == chat id.
func (e *Event) IsPrivate() bool {
	return e.Chat.Kind == "private" && e.Sender.ID == e.Chat.ID
}

// Classify decodes a raw webhook body and classifies it. See ClassifyUpdate.
func Classify(raw []byte) (*Event, error) {
	var update Update
	if err := json.Unmarshal(raw, &update); err != nil {
		return nil, fmt.Errorf("decoding update: %w", err)
	}
	return ClassifyUpdate(&update)
}

// ClassifyUpdate turns an update into exactly one typed event. Sections are
// checked in priority order: membership change, then channel post, then
// message. An update with none of the three fails with ErrMalformedUpdate.
func ClassifyUpdate(update *Update) (*Event, error) {
	switch {
	case update.MyChatMember != nil:
		return classifyMembershipChange(update), nil
	case update.ChannelPost != nil:
		return classifyChannelPost(update), nil
	case update.Message != nil:
		return classifyMessage(update), nil
	default:
		return nil, ErrMalformedUpdate
	}
}

func classifyMembershipChange(update *Update) *Event {
	change := update.MyChatMember
	return &Event{
		Kind:       KindMembershipChange,
		UpdateID:   update.UpdateID,
		Chat:       eventChat(change.Chat),
		Sender:     eventSender(change.From),
		Date:       change.Date,
		OldStatus:  change.OldChatMember.Status,
		NewStatus:  change.NewChatMember.Status,
		Privileges: change.NewChatMember.Privileges,
	}
}

func classifyChannelPost(update *Update) *Event {
	post := update.ChannelPost

	// Channels have no human "from"; the posting chat itself is the sender.
	senderChat := post.Chat
	if post.SenderChat != nil {
		senderChat = *post.SenderChat
	}

	return &Event{
		Kind:      KindChannelPost,
		UpdateID:  update.UpdateID,
		MessageID: post.MessageID,
		Chat:      eventChat(post.Chat),
		Sender:    EventSender{ID: senderChat.ID, Username: senderChat.Username},
		Text:      post.Text,
		Date:      post.Date,
	}
}

func classifyMessage(update *Update) *Event {
	msg := update.Message

	kind := KindPlainMessage
	for _, entity := range msg.Entities {
		if entity.Type == "bot_command" {
			kind = KindCommand
			break
		}
	}

	event := &Event{
		Kind:      kind,
		UpdateID:  update.UpdateID,
		MessageID: msg.MessageID,
		Chat:      eventChat(msg.Chat),
		Text:      msg.Text,
		Date:      msg.Date,
	}
	if msg.From != nil {
		event.Sender = eventSender(*msg.From)
	}
	return event
}

func eventChat(chat Chat) EventChat {
	return EventChat{
		ID:       chat.ID,
		Title:    chat.Title,
		Username: chat.Username,
		Kind:     chat.Type,
	}
}

func eventSender(user User) EventSender {
	return EventSender{
		ID:        user.ID,
		IsBot:     user.IsBot,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
	}
}

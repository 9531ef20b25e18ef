// ABOUTME: Conversation state machine and relay fan-out logic
// ABOUTME: Routes classified events to link management or message forwarding

package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/balakhaniyan/cobalt/internal/store"
	"github.com/balakhaniyan/cobalt/internal/telegram"
)

// Messenger sends replies back to the source platform.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// DestinationSender relays text to one destination contact.
type DestinationSender interface {
	Send(ctx context.Context, contactID, text string) ([]byte, error)
}

// Service advances the per-user linking dialog and fans messages out to
// linked destination contacts. Errors returned from HandleEvent are storage
// failures; outbound send failures are logged and swallowed, the relay is
// fire-and-forget from the webhook's perspective.
type Service struct {
	store       store.Store
	messenger   Messenger
	destination DestinationSender
	replies     Replies
	logger      *slog.Logger
}

// NewService creates a relay service.
func NewService(st store.Store, messenger Messenger, destination DestinationSender, replies Replies) *Service {
	return &Service{
		store:       st,
		messenger:   messenger,
		destination: destination,
		replies:     replies,
		logger:      slog.Default().With("component", "relay"),
	}
}

// HandleEvent processes one classified event to completion. Private-chat
// events (sender id == chat id) drive the per-user state machine; everything
// else is membership bookkeeping or fan-out.
func (s *Service) HandleEvent(ctx context.Context, event *telegram.Event) error {
	if event.IsPrivate() {
		return s.handlePrivate(ctx, event)
	}
	if event.Kind == telegram.KindMembershipChange {
		return s.handleMembership(ctx, event)
	}
	return s.fanOut(ctx, event)
}

// handlePrivate runs the add-link dialog for one user. Commands reset the
// dialog from any state; plain messages advance whatever step the user is on.
func (s *Service) handlePrivate(ctx context.Context, event *telegram.Event) error {
	userID := event.Sender.ID

	switch {
	case event.IsCommand("start"):
		s.reply(ctx, userID, s.replies.Welcome)
		return s.store.UpsertUserState(ctx, userID, store.StateStart)

	case event.IsCommand("add_link"):
		s.reply(ctx, userID, s.replies.AddLinkPrompt)
		titles, err := s.store.ListChatTitles(ctx, userID)
		if err != nil {
			return err
		}
		s.reply(ctx, userID, enumerateTitles(titles))
		return s.store.UpsertUserState(ctx, userID, store.StateAddLink)
	}

	if event.Kind != telegram.KindPlainMessage {
		return nil
	}

	state, err := s.store.GetUserState(ctx, userID)
	if err != nil {
		return err
	}

	switch state {
	case store.StateAddLink:
		created, err := s.store.CreateLink(ctx, userID, event.Text)
		if err != nil {
			return err
		}
		if !created {
			// State unchanged so the user can retry with another target
			s.reply(ctx, userID, s.replies.ChatNotFound)
			return nil
		}
		s.reply(ctx, userID, s.replies.EnterDestination)
		return s.store.UpsertUserState(ctx, userID, store.StateAddLinkDestination)

	case store.StateAddLinkDestination:
		attached, err := s.store.AttachDestinationContact(ctx, userID, event.Text)
		if err != nil {
			return err
		}
		if !attached {
			// No pending link to fill; stay silent, state unchanged
			return nil
		}
		s.reply(ctx, userID, s.replies.LinkAdded)
		return s.store.UpsertUserState(ctx, userID, store.StateStart)
	}

	// StateUnknown / StateStart: plain text outside the dialog is ignored
	return nil
}

// handleMembership registers or removes a chat when the bot's own status
// changes there. Replies go to the user whose action changed the status.
func (s *Service) handleMembership(ctx context.Context, event *telegram.Event) error {
	label := event.Chat.KindLabel()

	switch event.NewStatus {
	case "administrator":
		added, err := s.store.AddChatIfAbsent(ctx, store.Chat{
			ChatID:      event.Chat.ID,
			Username:    event.Chat.Username,
			Title:       event.Chat.Title,
			Kind:        event.Chat.Kind,
			OwnerUserID: event.Sender.ID,
		})
		if err != nil {
			return err
		}
		if added {
			s.reply(ctx, event.Sender.ID, fmt.Sprintf(s.replies.BotAdded, label, event.Chat.Title))
		} else {
			s.reply(ctx, event.Sender.ID, fmt.Sprintf(s.replies.BotAlreadyMember, label, event.Chat.Title))
		}

	case "left", "kicked", "member":
		removed, err := s.store.RemoveChat(ctx, event.Chat.ID)
		if err != nil {
			return err
		}
		if removed {
			s.reply(ctx, event.Sender.ID, fmt.Sprintf(s.replies.BotRemoved, label, event.Chat.Title))
		} else {
			s.reply(ctx, event.Sender.ID, fmt.Sprintf(s.replies.BotNotMember, label, event.Chat.Title))
		}
	}

	return nil
}

// fanOut forwards a group or channel message to every destination contact
// linked to its chat. Sends are best-effort and independent: one failure must
// not prevent the remaining attempts, and nothing is retried.
func (s *Service) fanOut(ctx context.Context, event *telegram.Event) error {
	if event.Kind != telegram.KindPlainMessage && event.Kind != telegram.KindChannelPost {
		return nil
	}

	contacts, err := s.store.ListDestinationContacts(ctx, event.Chat.ID)
	if err != nil {
		return err
	}

	for _, contact := range contacts {
		if _, err := s.destination.Send(ctx, contact, event.Text); err != nil {
			s.logger.Warn("fan-out send failed", "chat_id", event.Chat.ID, "contact", contact, "error", err)
		}
	}

	return nil
}

// reply sends text back to a Telegram chat or user, logging failures instead
// of surfacing them.
func (s *Service) reply(ctx context.Context, chatID int64, text string) {
	if err := s.messenger.SendMessage(ctx, chatID, text); err != nil {
		s.logger.Warn("reply failed", "chat_id", chatID, "error", err)
	}
}

// enumerateTitles renders a 1-based list of chat titles, one per line.
func enumerateTitles(titles []string) string {
	lines := lo.Map(titles, func(title string, i int) string {
		return fmt.Sprintf("%d. %s", i+1, title)
	})
	return strings.Join(lines, "\n")
}

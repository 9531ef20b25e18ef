// ABOUTME: Reply catalog for all texts the bot sends back to Telegram
// ABOUTME: Loads an embedded TOML default, optionally overridden by an operator file

package relay

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed replies.toml
var defaultRepliesTOML []byte

// Replies holds every reply text the relay sends. Membership replies are
// fmt.Sprintf templates taking the chat-kind label and the chat title, in that
// order. Loaded once at startup and read-only thereafter.
type Replies struct {
	Welcome          string `toml:"welcome"`
	AddLinkPrompt    string `toml:"add_link_prompt"`
	ChatNotFound     string `toml:"chat_not_found"`
	EnterDestination string `toml:"enter_destination"`
	LinkAdded        string `toml:"link_added"`
	BotAdded         string `toml:"bot_added"`
	BotAlreadyMember string `toml:"bot_already_member"`
	BotRemoved       string `toml:"bot_removed"`
	BotNotMember     string `toml:"bot_not_member"`
}

// DefaultReplies returns the embedded English catalog.
func DefaultReplies() Replies {
	var r Replies
	// The embedded catalog is compiled in; a decode failure is a build defect.
	if err := toml.Unmarshal(defaultRepliesTOML, &r); err != nil {
		panic(fmt.Sprintf("embedded reply catalog is invalid: %v", err))
	}
	return r
}

// LoadReplies reads a TOML catalog from path on top of the embedded defaults,
// so operator files may override only some keys (e.g. for localization).
func LoadReplies(path string) (Replies, error) {
	r := DefaultReplies()

	data, err := os.ReadFile(path)
	if err != nil {
		return Replies{}, fmt.Errorf("reading reply catalog: %w", err)
	}
	if err := toml.Unmarshal(data, &r); err != nil {
		return Replies{}, fmt.Errorf("parsing reply catalog: %w", err)
	}

	return r, nil
}

// ABOUTME: Tests for webhook payload classification
// ABOUTME: Covers the four event kinds, command matching and malformed payloads

package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Command(t *testing.T) {
	raw := []byte(`{
		"update_id": 100,
		"message": {
			"message_id": 7,
			"from": {"id": 42, "is_bot": false, "first_name": "Ada", "username": "ada"},
			"chat": {"id": 42, "type": "private", "first_name": "Ada"},
			"date": 1700000000,
			"text": "/add_link",
			"entities": [{"type": "bot_command", "offset": 0, "length": 9}]
		}
	}`)

	event, err := Classify(raw)
	require.NoError(t, err)
	assert.Equal(t, KindCommand, event.Kind)
	assert.Equal(t, int64(100), event.UpdateID)
	assert.Equal(t, int64(42), event.Sender.ID)
	assert.Equal(t, int64(42), event.Chat.ID)
	assert.Equal(t, "/add_link", event.Text)
	assert.True(t, event.IsPrivate())
}

func TestClassify_PlainMessage(t *testing.T) {
	raw := []byte(`{
		"update_id": 101,
		"message": {
			"message_id": 8,
			"from": {"id": 42, "is_bot": false, "first_name": "Ada"},
			"chat": {"id": -1001, "title": "My Group", "type": "group"},
			"date": 1700000001,
			"text": "hello"
		}
	}`)

	event, err := Classify(raw)
	require.NoError(t, err)
	assert.Equal(t, KindPlainMessage, event.Kind)
	assert.Equal(t, "hello", event.Text)
	assert.Equal(t, "group", event.Chat.Kind)
	assert.False(t, event.IsPrivate())
}

func TestClassify_NonCommandEntity(t *testing.T) {
	raw := []byte(`{
		"update_id": 102,
		"message": {
			"message_id": 9,
			"from": {"id": 42},
			"chat": {"id": 42, "type": "private"},
			"date": 1700000002,
			"text": "see https://example.org",
			"entities": [{"type": "url", "offset": 4, "length": 19}]
		}
	}`)

	event, err := Classify(raw)
	require.NoError(t, err)
	assert.Equal(t, KindPlainMessage, event.Kind)
}

func TestClassify_MembershipChange(t *testing.T) {
	raw := []byte(`{
		"update_id": 103,
		"my_chat_member": {
			"chat": {"id": -1002, "title": "My Channel", "username": "mychannel", "type": "channel"},
			"from": {"id": 42, "is_bot": false, "first_name": "Ada"},
			"date": 1700000003,
			"old_chat_member": {"status": "left", "user": {"id": 7, "is_bot": true}},
			"new_chat_member": {
				"status": "administrator",
				"user": {"id": 7, "is_bot": true},
				"can_post_messages": true,
				"can_delete_messages": false,
				"is_anonymous": false
			}
		}
	}`)

	event, err := Classify(raw)
	require.NoError(t, err)
	assert.Equal(t, KindMembershipChange, event.Kind)
	assert.Equal(t, "left", event.OldStatus)
	assert.Equal(t, "administrator", event.NewStatus)
	assert.Equal(t, []string{"can_delete_messages", "can_post_messages", "is_anonymous"}, event.Privileges)
	assert.Equal(t, "channel", event.Chat.Kind)
	assert.Equal(t, int64(42), event.Sender.ID)
}

func TestClassify_MembershipChangeWinsOverMessage(t *testing.T) {
	// Membership section takes priority when multiple sections appear
	raw := []byte(`{
		"update_id": 104,
		"message": {
			"message_id": 1,
			"from": {"id": 42},
			"chat": {"id": -1002, "type": "channel"},
			"date": 1700000004,
			"text": "ignored"
		},
		"my_chat_member": {
			"chat": {"id": -1002, "type": "channel"},
			"from": {"id": 42},
			"date": 1700000004,
			"old_chat_member": {"status": "member"},
			"new_chat_member": {"status": "administrator"}
		}
	}`)

	event, err := Classify(raw)
	require.NoError(t, err)
	assert.Equal(t, KindMembershipChange, event.Kind)
}

func TestClassify_ChannelPost(t *testing.T) {
	raw := []byte(`{
		"update_id": 105,
		"channel_post": {
			"message_id": 11,
			"sender_chat": {"id": -1002, "title": "My Channel", "username": "mychannel", "type": "channel"},
			"chat": {"id": -1002, "title": "My Channel", "username": "mychannel", "type": "channel"},
			"date": 1700000005,
			"text": "announcement"
		}
	}`)

	event, err := Classify(raw)
	require.NoError(t, err)
	assert.Equal(t, KindChannelPost, event.Kind)
	// The posting chat is the sender
	assert.Equal(t, int64(-1002), event.Sender.ID)
	assert.Equal(t, "announcement", event.Text)
}

func TestClassify_Malformed(t *testing.T) {
	event, err := Classify([]byte(`{"update_id": 106}`))
	assert.Nil(t, event)
	assert.ErrorIs(t, err, ErrMalformedUpdate)
}

func TestClassify_InvalidJSON(t *testing.T) {
	_, err := Classify([]byte(`{`))
	assert.Error(t, err)
}

func TestIsCommand(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		text string
		cmd  string
		want bool
	}{
		{"exact match", KindCommand, "/add_link", "add_link", true},
		{"trailing garbage", KindCommand, "/add_linkx", "add_link", false},
		{"text without slash", KindCommand, "add_link", "add_link", false},
		{"empty text", KindCommand, "", "add_link", false},
		{"case sensitive", KindCommand, "/Add_Link", "add_link", false},
		{"plain message never matches", KindPlainMessage, "/add_link", "add_link", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &Event{Kind: tt.kind, Text: tt.text}
			assert.Equal(t, tt.want, event.IsCommand(tt.cmd))
		})
	}
}

func TestChatKindLabels(t *testing.T) {
	assert.Equal(t, "group", EventChat{Kind: "group"}.KindLabel())
	assert.Equal(t, "supergroup", EventChat{Kind: "supergroup"}.KindLabel())
	assert.Equal(t, "channel", EventChat{Kind: "channel"}.KindLabel())
	// Unrecognized kinds label as the empty string
	assert.Equal(t, "", EventChat{Kind: "corridor"}.KindLabel())
}

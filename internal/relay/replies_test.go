// ABOUTME: Tests for the reply catalog loader
// ABOUTME: Covers embedded defaults and partial operator overrides

package relay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultReplies_AllKeysPresent(t *testing.T) {
	r := DefaultReplies()

	assert.NotEmpty(t, r.Welcome)
	assert.NotEmpty(t, r.AddLinkPrompt)
	assert.NotEmpty(t, r.ChatNotFound)
	assert.NotEmpty(t, r.EnterDestination)
	assert.NotEmpty(t, r.LinkAdded)
	assert.NotEmpty(t, r.BotAdded)
	assert.NotEmpty(t, r.BotAlreadyMember)
	assert.NotEmpty(t, r.BotRemoved)
	assert.NotEmpty(t, r.BotNotMember)
}

func TestLoadReplies_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replies.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
welcome = "خوش آمدید"
link_added = "لینک با موفقیت اضافه شد"
`), 0644))

	r, err := LoadReplies(path)
	require.NoError(t, err)

	assert.Equal(t, "خوش آمدید", r.Welcome)
	assert.Equal(t, "لینک با موفقیت اضافه شد", r.LinkAdded)
	// Unset keys keep the embedded defaults
	assert.Equal(t, DefaultReplies().ChatNotFound, r.ChatNotFound)
}

func TestLoadReplies_MissingFile(t *testing.T) {
	_, err := LoadReplies(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadReplies_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`welcome = `), 0644))

	_, err := LoadReplies(path)
	assert.Error(t, err)
}

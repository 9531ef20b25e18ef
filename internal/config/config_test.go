// ABOUTME: Tests for configuration loading, validation and defaults
// ABOUTME: Covers YAML parsing, env expansion, durations and the env-only fallback

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `
telegram:
  token: "123:ABC"
wemessenger:
  bot_uid: "we-bot"
database:
  path: "/tmp/cobalt.db"
`

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "123:ABC", cfg.Telegram.Token)
	assert.Equal(t, "we-bot", cfg.Wemessenger.BotUID)
	assert.Equal(t, "/tmp/cobalt.db", cfg.Database.Path)

	// Defaults
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.Telegram.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Dedupe.TTL)
	assert.Equal(t, 10000, cfg.Dedupe.MaxSize)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_Full(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  http_addr: ":9090"
  public_url: "https://relay.example.org/"
telegram:
  token: "123:ABC"
  api_base: "https://tg.example.org"
  timeout: "3s"
wemessenger:
  bot_uid: "we-bot"
  timeout: "5s"
database:
  path: "/var/lib/cobalt/cobalt.db"
replies:
  path: "/etc/cobalt/replies.toml"
dedupe:
  ttl: "1h"
  max_size: 500
logging:
  level: "debug"
  format: "json"
`))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, "https://relay.example.org/", cfg.Server.PublicURL)
	assert.Equal(t, 3*time.Second, cfg.Telegram.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Wemessenger.Timeout)
	assert.Equal(t, time.Hour, cfg.Dedupe.TTL)
	assert.Equal(t, 500, cfg.Dedupe.MaxSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("COBALT_TEST_TOKEN", "env-token")

	cfg, err := Load(writeConfig(t, `
telegram:
  token: "${COBALT_TEST_TOKEN}"
wemessenger:
  bot_uid: "we-bot"
database:
  path: "/tmp/cobalt.db"
`))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing token",
			yaml: "wemessenger: {bot_uid: we-bot}\ndatabase: {path: /tmp/x.db}\n",
			want: "telegram.token",
		},
		{
			name: "missing bot uid",
			yaml: "telegram: {token: t}\ndatabase: {path: /tmp/x.db}\n",
			want: "wemessenger.bot_uid",
		},
		{
			name: "missing database path",
			yaml: "telegram: {token: t}\nwemessenger: {bot_uid: we-bot}\n",
			want: "database.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "t"
  timeout: "soon"
wemessenger:
  bot_uid: "we-bot"
database:
  path: "/tmp/cobalt.db"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.timeout")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("COBALT_TELEGRAM_TOKEN", "123:ABC")
	t.Setenv("COBALT_WEMESSENGER_BOT_UID", "we-bot")
	t.Setenv("COBALT_DATABASE_PATH", "/tmp/cobalt.db")
	t.Setenv("COBALT_SERVER_HTTP_ADDR", ":7070")
	t.Setenv("COBALT_DEDUPE_TTL", "30m")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "123:ABC", cfg.Telegram.Token)
	assert.Equal(t, "we-bot", cfg.Wemessenger.BotUID)
	assert.Equal(t, ":7070", cfg.Server.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.Dedupe.TTL)
}

func TestFromEnv_MissingRequired(t *testing.T) {
	t.Setenv("COBALT_TELEGRAM_TOKEN", "")
	t.Setenv("COBALT_WEMESSENGER_BOT_UID", "")
	t.Setenv("COBALT_DATABASE_PATH", "")

	_, err := FromEnv()
	assert.Error(t, err)
}

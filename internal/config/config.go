// ABOUTME: Configuration loading and parsing for cobalt
// ABOUTME: Supports YAML files with environment variable expansion and an env-only fallback

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the complete cobalt configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Wemessenger WemessengerConfig `yaml:"wemessenger"`
	Replies     RepliesConfig     `yaml:"replies"`
	Dedupe      DedupeConfig      `yaml:"dedupe"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds the webhook server addresses
type ServerConfig struct {
	// HTTPAddr is the local listen address
	HTTPAddr string `yaml:"http_addr" envconfig:"SERVER_HTTP_ADDR"`
	// PublicURL is the externally reachable URL registered as the webhook
	PublicURL string `yaml:"public_url" envconfig:"SERVER_PUBLIC_URL"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" envconfig:"DATABASE_PATH"`
}

// TelegramConfig holds source platform credentials and addressing
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"TELEGRAM_TOKEN"`
	APIBase string `yaml:"api_base" envconfig:"TELEGRAM_API_BASE"`

	Timeout    time.Duration `yaml:"-" envconfig:"TELEGRAM_TIMEOUT"`
	TimeoutRaw string        `yaml:"timeout" ignored:"true"`
}

// WemessengerConfig holds destination platform credentials and addressing
type WemessengerConfig struct {
	BotUID  string `yaml:"bot_uid" envconfig:"WEMESSENGER_BOT_UID"`
	APIBase string `yaml:"api_base" envconfig:"WEMESSENGER_API_BASE"`

	Timeout    time.Duration `yaml:"-" envconfig:"WEMESSENGER_TIMEOUT"`
	TimeoutRaw string        `yaml:"timeout" ignored:"true"`
}

// RepliesConfig points at an optional reply catalog override file
type RepliesConfig struct {
	Path string `yaml:"path" envconfig:"REPLIES_PATH"`
}

// DedupeConfig bounds the webhook update id cache
type DedupeConfig struct {
	TTL    time.Duration `yaml:"-" envconfig:"DEDUPE_TTL"`
	TTLRaw string        `yaml:"ttl" ignored:"true"`

	MaxSize int `yaml:"max_size" envconfig:"DEDUPE_MAX_SIZE"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOGGING_LEVEL"`
	Format string `yaml:"format" envconfig:"LOGGING_FORMAT"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config entirely from COBALT_* environment variables,
// for deployments that ship no config file.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("cobalt", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills unset optional fields.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = 10 * time.Second
	}
	if c.Wemessenger.Timeout == 0 {
		c.Wemessenger.Timeout = 10 * time.Second
	}
	if c.Dedupe.TTL == 0 {
		c.Dedupe.TTL = 10 * time.Minute
	}
	if c.Dedupe.MaxSize == 0 {
		c.Dedupe.MaxSize = 10000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Wemessenger.BotUID == "" {
		return fmt.Errorf("wemessenger.bot_uid is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Telegram.TimeoutRaw != "" {
		cfg.Telegram.Timeout, err = time.ParseDuration(cfg.Telegram.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing telegram.timeout %q: %w", cfg.Telegram.TimeoutRaw, err)
		}
	}

	if cfg.Wemessenger.TimeoutRaw != "" {
		cfg.Wemessenger.Timeout, err = time.ParseDuration(cfg.Wemessenger.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing wemessenger.timeout %q: %w", cfg.Wemessenger.TimeoutRaw, err)
		}
	}

	if cfg.Dedupe.TTLRaw != "" {
		cfg.Dedupe.TTL, err = time.ParseDuration(cfg.Dedupe.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe.ttl %q: %w", cfg.Dedupe.TTLRaw, err)
		}
	}

	return nil
}

// ABOUTME: Entry point for the cobalt relay server
// ABOUTME: Bridges Telegram chats to Wemessenger contacts via persisted links

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/balakhaniyan/cobalt/internal/config"
	"github.com/balakhaniyan/cobalt/internal/dedupe"
	"github.com/balakhaniyan/cobalt/internal/relay"
	"github.com/balakhaniyan/cobalt/internal/server"
	"github.com/balakhaniyan/cobalt/internal/store"
	"github.com/balakhaniyan/cobalt/internal/telegram"
	"github.com/balakhaniyan/cobalt/internal/wemessenger"
)

const banner = `
   ╭───────────────────────────────╮
   │                               │
   │   ┏━╸┏━┓┏┓ ┏━┓╻  ╺┳╸         │
   │   ┃  ┃ ┃┣┻┓┣━┫┃   ┃          │
   │   ┗━╸┗━┛┗━┛╹ ╹┗━╸ ╹          │
   │                               │
   │   telegram → we relay         │
   │                               │
   ╰───────────────────────────────╯
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: cobalt <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the webhook server")
		fmt.Println("  setup     Register the webhook and command list with Telegram")
		fmt.Println("  health    Check a running instance")
		os.Exit(1)
	}

	// Best-effort; a missing .env is not an error
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "setup":
		err = runSetup(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration from --config, COBALT_CONFIG, or the
// environment when no file is given.
func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("cobalt", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("COBALT_CONFIG"), "path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		return config.Load(*configPath)
	}
	return config.FromEnv()
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runServe(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	color.Cyan(banner)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	defer st.Close()

	replies := relay.DefaultReplies()
	if cfg.Replies.Path != "" {
		replies, err = relay.LoadReplies(cfg.Replies.Path)
		if err != nil {
			return fmt.Errorf("loading reply catalog: %w", err)
		}
	}

	tgClient := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.APIBase, cfg.Telegram.Timeout)
	weClient := wemessenger.NewClient(cfg.Wemessenger.BotUID, cfg.Wemessenger.APIBase, cfg.Wemessenger.Timeout)
	relayService := relay.NewService(st, tgClient, weClient, replies)

	cache := dedupe.New(cfg.Dedupe.TTL, cfg.Dedupe.MaxSize)
	defer cache.Close()

	srv := server.New(cfg, relayService, tgClient, cache)
	return srv.Start(ctx)
}

func runSetup(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	if cfg.Server.PublicURL == "" {
		return fmt.Errorf("server.public_url is required for setup")
	}

	tgClient := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.APIBase, cfg.Telegram.Timeout)

	webhookResp, err := tgClient.SetWebhook(ctx, cfg.Server.PublicURL)
	if err != nil {
		return fmt.Errorf("registering webhook: %w", err)
	}
	printRegistration("webhook", webhookResp)

	commandsResp, err := tgClient.SetMyCommands(ctx, []telegram.BotCommand{
		{Command: "add_link", Description: "Add a relay link"},
	})
	if err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}
	printRegistration("commands", commandsResp)

	return nil
}

func printRegistration(what string, resp *telegram.APIResponse) {
	if resp.OK {
		color.Green("%s: registered", what)
	} else {
		color.Red("%s: rejected (%s)", what, resp.Description)
	}
}

func runHealth(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cobalt health", flag.ContinueOnError)
	addr := fs.String("addr", "http://localhost:8080", "base URL of the running instance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *addr+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	var status map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}

	color.Green("status: %s", status["status"])
	return nil
}

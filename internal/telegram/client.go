// ABOUTME: Telegram Bot API client for webhook setup and outbound replies
// ABOUTME: Wraps setWebhook, setMyCommands and sendMessage with a bounded timeout

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultAPIBase is the production Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// BotCommand is one entry of the command list shown in the Telegram UI.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// APIResponse is the JSON envelope every Bot API method returns.
type APIResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Client calls the Telegram Bot API. All requests share one bounded-timeout
// HTTP client; a slow Telegram stalls only the current request.
type Client struct {
	token   string
	apiBase string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a Bot API client. An empty apiBase selects the production
// endpoint; a zero timeout defaults to 10 seconds.
func NewClient(token, apiBase string, timeout time.Duration) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		token:   token,
		apiBase: apiBase,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "telegram"),
	}
}

// SetWebhook registers url as the bot's webhook endpoint.
func (c *Client) SetWebhook(ctx context.Context, url string) (*APIResponse, error) {
	return c.call(ctx, "setWebhook", map[string]any{"url": url})
}

// SetMyCommands registers the bot's command list.
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) (*APIResponse, error) {
	return c.call(ctx, "setMyCommands", map[string]any{"commands": commands})
}

// SendMessage sends text to a chat or user.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	resp, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("sendMessage rejected: %s", resp.Description)
	}
	return nil
}

// call POSTs a JSON body to one Bot API method and decodes the envelope.
func (c *Client) call(ctx context.Context, method string, payload any) (*APIResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}

	c.logger.Debug("bot api call", "method", method, "ok", apiResp.OK)
	return &apiResp, nil
}

// ABOUTME: Wemessenger client adapter for relaying text to linked contacts
// ABOUTME: Translates composite contact ids into the platform's category addressing

package wemessenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIBase is the production Wemessenger endpoint.
const DefaultAPIBase = "https://api.wemessenger.ir/v2"

// Contact id errors. Both are fatal for the single send they occur on.
var (
	ErrUnknownCategory = errors.New("unknown contact category code")
	ErrBadContactID    = errors.New("contact id is not of the form <category>:<node>")
)

// categories maps contact category codes to the platform's category enum.
// Initialized once, never mutated.
var categories = map[string]string{
	"2": "GROUP",
	"3": "CHANNEL",
}

// sendRequest is the JSON body of the platform's sendMessage call.
type sendRequest struct {
	To   sendTarget `json:"to"`
	Text sendText   `json:"text"`
}

type sendTarget struct {
	Category  string `json:"category"`
	Node      string `json:"node"`
	SessionID string `json:"session_id"`
}

type sendText struct {
	Text string `json:"text"`
}

// Client sends messages to Wemessenger contacts on behalf of one bot.
type Client struct {
	botUID  string
	apiBase string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a Wemessenger client. An empty apiBase selects the
// production endpoint; a zero timeout defaults to 10 seconds.
func NewClient(botUID, apiBase string, timeout time.Duration) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		botUID:  botUID,
		apiBase: apiBase,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "wemessenger"),
	}
}

// Send relays text to one contact and returns the raw response body.
// contactID is a composite "<category_code>:<node>" string; an unknown
// category code or malformed id fails this send only.
func (c *Client) Send(ctx context.Context, contactID, text string) ([]byte, error) {
	code, node, ok := strings.Cut(contactID, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadContactID, contactID)
	}

	category, ok := categories[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, code)
	}

	body, err := json.Marshal(sendRequest{
		To:   sendTarget{Category: category, Node: node, SessionID: "*"},
		Text: sendText{Text: text},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/sendMessage", c.apiBase, c.botUID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending to contact %q: %w", contactID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading send response: %w", err)
	}

	c.logger.Debug("message relayed", "contact", contactID, "status", resp.StatusCode)
	return raw, nil
}

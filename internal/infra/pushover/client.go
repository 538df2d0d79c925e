package pushover

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client pushes session state changes to a phone. It implements the
// application StateObserver; every hook is best effort and never blocks a
// transition.
type Client struct {
	token      string
	userKey    string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(token, userKey string, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		baseURL:    "https://api.pushover.net/1/messages.json",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (c *Client) OnActivate() {
	c.notify("Listening")
}

func (c *Client) OnWake() {
	c.notify("Waking up")
}

func (c *Client) OnSleep() {
	c.notify("Sleeping")
}

func (c *Client) notify(message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.send(ctx, message); err != nil {
		c.logger.Warn("pushover notification failed", "message", message, "error", err)
	}
}

func (c *Client) send(ctx context.Context, message string) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}

	data := url.Values{}
	data.Set("token", c.token)
	data.Set("user", c.userKey)
	data.Set("message", message)
	data.Set("title", "Assistant")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover error: %s", resp.Status)
	}
	return nil
}

package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jarvis/internal/infra"
)

// Speech is the spoken-reply surface the client needs. Satisfied by the
// application speaker.
type Speech interface {
	Say(ctx context.Context, text string) error
}

// Client forwards in-session commands to a conversational bot service and
// speaks the reply.
type Client struct {
	apiHost    string
	httpClient *http.Client
	speech     Speech
	logger     *slog.Logger
}

func NewClient(apiHost string, speech Speech, logger *slog.Logger) *Client {
	return &Client{
		apiHost:    strings.TrimRight(apiHost, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		speech:     speech,
		logger:     logger,
	}
}

func (c *Client) Dispatch(ctx context.Context, text string) error {
	reply, err := c.sendPrompt(ctx, text)
	if err != nil {
		return fmt.Errorf("sending prompt: %w", err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		c.logger.Debug("bot returned an empty reply", "prompt", text)
		return nil
	}

	if err := c.speech.Say(ctx, reply); err != nil {
		return fmt.Errorf("speaking reply: %w", err)
	}
	return nil
}

func (c *Client) sendPrompt(ctx context.Context, prompt string) (string, error) {
	var reply string

	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiHost+"/get_prompt_response", nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		q := req.URL.Query()
		q.Add("prompt", prompt)
		req.URL.RawQuery = q.Encode()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("bot error %d: %s (retryable)", resp.StatusCode, string(body))
			}
			return fmt.Errorf("bot error %d: %s", resp.StatusCode, string(body))
		}

		reply = string(body)
		return nil
	})

	return reply, retryErr
}

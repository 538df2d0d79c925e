package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"jarvis/internal/infra"
)

const systemPrompt = `You are a helpful voice assistant. The user talks to you by speaking, and your answer will be read aloud by a speech synthesizer.

Keep answers short and conversational: one or two sentences. No markdown, no lists, no code blocks. If you cannot help with something, say so briefly.`

// historyLimit caps how many past exchanges are replayed on each request.
const historyLimit = 6

// Speech is the spoken-reply surface the client needs.
type Speech interface {
	Say(ctx context.Context, text string) error
}

// ClaudeClient answers in-session commands with a Claude completion and
// speaks the reply. It is the built-in alternative to an external bot
// service for the command router, and keeps a short rolling conversation
// history so follow-up questions make sense.
type ClaudeClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	speech     Speech

	mu      sync.Mutex
	history []message
}

func NewClaudeClient(apiKey, model string, speech Speech) *ClaudeClient {
	return NewClaudeClientWithURL(apiKey, model, "https://api.anthropic.com/v1", speech)
}

func NewClaudeClientWithURL(apiKey, model, baseURL string, speech Speech) *ClaudeClient {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      model,
		speech:     speech,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *ClaudeClient) Dispatch(ctx context.Context, text string) error {
	reply, err := c.complete(ctx, text)
	if err != nil {
		return err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fmt.Errorf("empty response from claude")
	}

	c.remember(text, reply)

	if err := c.speech.Say(ctx, reply); err != nil {
		return fmt.Errorf("speaking reply: %w", err)
	}
	return nil
}

func (c *ClaudeClient) complete(ctx context.Context, text string) (string, error) {
	reqBody := request{
		Model:     c.model,
		MaxTokens: 256,
		System:    systemPrompt,
		Messages:  append(c.recentHistory(), message{Role: "user", Content: text}),
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var result response
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("claude API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("claude API error %d: %s", resp.StatusCode, string(respBody))
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("empty response from claude")
	}
	return result.Content[0].Text, nil
}

func (c *ClaudeClient) recentHistory() []message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]message(nil), c.history...)
}

func (c *ClaudeClient) remember(prompt, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history,
		message{Role: "user", Content: prompt},
		message{Role: "assistant", Content: reply},
	)
	if len(c.history) > historyLimit*2 {
		c.history = c.history[len(c.history)-historyLimit*2:]
	}
}

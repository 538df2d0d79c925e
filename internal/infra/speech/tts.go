package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jarvis/internal/infra"
)

// TTSClient synthesizes spoken lines through an HTTP text-to-speech service
// that returns WAV audio.
type TTSClient struct {
	url        string
	authToken  string
	voice      string
	httpClient *http.Client
}

func NewTTSClient(url, authToken, voice string) *TTSClient {
	return &TTSClient{
		url:        url,
		authToken:  authToken,
		voice:      voice,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var audio []byte

	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		payload, err := json.Marshal(synthesizeRequest{Text: text, Voice: c.voice})
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.authToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.authToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("tts error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("tts error %d: %s", resp.StatusCode, string(respBody))
		}

		audio, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned no audio")
	}
	return audio, nil
}

package application

import (
	"context"
	"fmt"

	"jarvis/internal/domain"
)

// Recognizer converts a captured utterance into text. Ambiguous or silent
// audio is not an error: implementations return an empty Recognition for it.
// Errors are reserved for backend failures (network, service) and are
// swallowed by the consumer loop either way.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte) (domain.Recognition, error)
}

// NoopRecognizer is used when no speech-to-text backend is configured. It
// fails on real audio so misconfiguration is visible in the logs.
type NoopRecognizer struct{}

func (n *NoopRecognizer) Recognize(_ context.Context, _ []byte) (domain.Recognition, error) {
	return domain.Recognition{}, fmt.Errorf("speech-to-text not configured: set openai.api_key to enable recognition")
}

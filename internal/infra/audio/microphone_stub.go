//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jarvis/internal/domain"
)

type MicrophoneConfig struct {
	SampleRate      int
	FramesPerBuffer int
	FluxThreshold   float64
	QuietTime       time.Duration
	MaxUtterance    time.Duration
	Archive         *Archive
}

// MicrophoneSource stub when portaudio is not available.
type MicrophoneSource struct {
	logger *slog.Logger
}

func NewMicrophoneSource(_ MicrophoneConfig, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{logger: logger}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) SetDucked(bool) {}

func (m *MicrophoneSource) Start(context.Context, domain.UtteranceSink) error {
	return fmt.Errorf("microphone source not available: rebuild with -tags portaudio")
}

func (m *MicrophoneSource) Stop() error {
	return nil
}

//go:build !portaudio
// +build !portaudio

package speech

import (
	"context"
	"fmt"
	"log/slog"
)

// Player stub when portaudio is not available.
type Player struct {
	logger *slog.Logger
}

func NewPlayer(logger *slog.Logger) *Player {
	return &Player{logger: logger}
}

func (p *Player) Play(context.Context, []byte) error {
	return fmt.Errorf("audio playback not available: rebuild with -tags portaudio")
}

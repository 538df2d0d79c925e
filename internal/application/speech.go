package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// SpeechOutput speaks a line to the user. Implementations must hold the
// speech gate for the full duration of playback so the consumer loop knows
// to discard what the microphone hears in the meantime.
type SpeechOutput interface {
	Say(ctx context.Context, text string) error
}

// Synthesizer renders text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Player plays WAV audio on the output device.
type Player interface {
	Play(ctx context.Context, wav []byte) error
}

// Speaker is the standard SpeechOutput: synthesize, then play, with the
// speech gate held across both.
type Speaker struct {
	synth  Synthesizer
	player Player
	gate   *SpeechGate
	logger *slog.Logger
}

func NewSpeaker(synth Synthesizer, player Player, gate *SpeechGate, logger *slog.Logger) *Speaker {
	return &Speaker{
		synth:  synth,
		player: player,
		gate:   gate,
		logger: logger,
	}
}

func (s *Speaker) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.gate.BeginSpeaking()
	defer s.gate.EndSpeaking()

	s.logger.Debug("speaking", "text", text)

	wav, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesizing speech: %w", err)
	}

	if err := s.player.Play(ctx, wav); err != nil {
		return fmt.Errorf("playing speech: %w", err)
	}

	return nil
}

// LoggedSpeech is the fallback SpeechOutput when no TTS backend is
// configured: lines go to the log instead of the speakers. It still holds
// the gate so the self-feedback discipline is exercised identically.
type LoggedSpeech struct {
	gate   *SpeechGate
	logger *slog.Logger
}

func NewLoggedSpeech(gate *SpeechGate, logger *slog.Logger) *LoggedSpeech {
	return &LoggedSpeech{gate: gate, logger: logger}
}

func (l *LoggedSpeech) Say(_ context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	l.gate.BeginSpeaking()
	defer l.gate.EndSpeaking()
	l.logger.Info("assistant says", "text", text)
	return nil
}

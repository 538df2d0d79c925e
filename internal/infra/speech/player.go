//go:build portaudio
// +build portaudio

package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// Player plays synthesized WAV audio on the default output device.
type Player struct {
	framesPerBuffer int
	logger          *slog.Logger
}

func NewPlayer(logger *slog.Logger) *Player {
	return &Player{framesPerBuffer: 1024, logger: logger}
}

func (p *Player) Play(ctx context.Context, wavData []byte) error {
	decoder := wav.NewDecoder(bytes.NewReader(wavData))
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("decoding wav: %w", err)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return fmt.Errorf("wav has no samples")
	}

	// Initialize is reference counted, so this is safe alongside the
	// microphone source.
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	out := make([]int16, p.framesPerBuffer*buf.Format.NumChannels)
	stream, err := portaudio.OpenDefaultStream(
		0, buf.Format.NumChannels, float64(buf.Format.SampleRate), p.framesPerBuffer, out)
	if err != nil {
		return fmt.Errorf("opening output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting output stream: %w", err)
	}
	defer stream.Stop()

	for offset := 0; offset < len(buf.Data); offset += len(out) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for i := range out {
			if offset+i < len(buf.Data) {
				out[i] = int16(buf.Data[offset+i])
			} else {
				out[i] = 0
			}
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing to output stream: %w", err)
		}
	}

	return nil
}

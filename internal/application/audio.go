package application

import (
	"context"

	"jarvis/internal/domain"
)

// AudioSource owns one capture device (or transport) for the process
// lifetime and delivers segmented utterances to the sink. Start must not
// block beyond device setup; capture runs in the background until Stop or
// context cancellation. Delivery goes through the sink's non-blocking Offer,
// so a slow consumer can never stall the capture path.
type AudioSource interface {
	Start(ctx context.Context, sink domain.UtteranceSink) error
	Stop() error
	Name() string
}

type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}

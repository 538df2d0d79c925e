package domain

import "time"

// Utterance is a single captured speech segment. It is produced by an audio
// source, passes through the queue exactly once and is discarded after the
// recognition attempt, whether that attempt succeeds or not.
type Utterance struct {
	ID         string
	Audio      []byte
	Text       string // non-empty for pre-transcribed text commands
	CapturedAt time.Time
}

// IsText reports whether the utterance carries command text directly and
// needs no recognition pass.
func (u Utterance) IsText() bool {
	return u.Text != ""
}

// Recognition is the outcome of a speech-to-text attempt. An empty Text
// means the recognizer heard nothing usable; that is not an error.
type Recognition struct {
	Text       string
	Confidence float64
}

// UtteranceSink accepts captured utterances from an audio source. Offer must
// never block; it reports whether the utterance was enqueued, false meaning
// it was dropped for backpressure.
type UtteranceSink interface {
	Offer(u Utterance) bool
}

// QueueStats exposes queue health for diagnostics endpoints.
type QueueStats interface {
	Len() int
	Dropped() uint64
}

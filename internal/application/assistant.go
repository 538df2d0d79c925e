package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"jarvis/internal/domain"
)

const defaultPollInterval = 250 * time.Millisecond

// Assistant is the single consumer of the utterance queue. It drains
// utterances strictly in capture order, one at a time: a slow recognition
// simply delays the next dequeue while new utterances queue up behind it
// (bounded, drop-oldest).
type Assistant struct {
	audio      AudioSource
	queue      *UtteranceQueue
	recognizer Recognizer
	session    *Session
	wake       *WakeMatcher
	debounce   *WakeDebouncer
	gate       *SpeechGate
	monitor    *InactivityMonitor
	logger     *slog.Logger

	pollInterval time.Duration
}

func NewAssistant(
	audio AudioSource,
	queue *UtteranceQueue,
	recognizer Recognizer,
	session *Session,
	wake *WakeMatcher,
	debounce *WakeDebouncer,
	gate *SpeechGate,
	monitor *InactivityMonitor,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		audio:        audio,
		queue:        queue,
		recognizer:   recognizer,
		session:      session,
		wake:         wake,
		debounce:     debounce,
		gate:         gate,
		monitor:      monitor,
		logger:       logger,
		pollInterval: defaultPollInterval,
	}
}

// Run starts the audio source and the inactivity monitor, then consumes
// utterances until ctx is done. A failed audio device degrades the assistant
// to a deaf-but-alive mode instead of terminating it.
func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting audio source", "source", a.audio.Name())
	if err := a.audio.Start(ctx, a.queue); err != nil {
		a.logger.Error("audio source unavailable, continuing without listening",
			"source", a.audio.Name(), "error", err)
	} else {
		defer a.audio.Stop()
	}

	go a.monitor.Run(ctx)

	a.logger.Info("assistant ready, waiting for the wake phrase")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u, ok := a.queue.Next(ctx, a.pollInterval)
		if !ok {
			continue
		}
		a.processUtterance(ctx, u)
	}
}

func (a *Assistant) processUtterance(ctx context.Context, u domain.Utterance) {
	if u.IsText() {
		// Pre-transcribed commands cannot be self-feedback; they skip both
		// the gate and the recognizer.
		a.logger.Info("text command received", "id", u.ID, "text", u.Text)
		a.route(ctx, u.Text)
		return
	}

	if a.gate.Speaking() {
		a.logger.Debug("utterance discarded, assistant is speaking", "id", u.ID)
		return
	}

	rec, err := a.recognizer.Recognize(ctx, u.Audio)
	if err != nil {
		// Backend failures are as routine as background noise; neither is
		// worth a user-facing error.
		a.logger.Debug("recognition failed", "id", u.ID, "error", err)
		return
	}

	text := strings.TrimSpace(rec.Text)
	if text == "" {
		return
	}

	a.logger.Info("heard", "id", u.ID, "text", text, "confidence", rec.Confidence)
	a.route(ctx, text)
}

func (a *Assistant) route(ctx context.Context, text string) {
	switch a.session.State() {
	case domain.StateActive:
		a.session.HandleCommand(ctx, text)

	case domain.StateActivating:
		// Acknowledgment still in flight; anything heard now is almost
		// always an echo fragment of it.
		a.logger.Debug("utterance ignored during activation")

	case domain.StateIdle:
		if matched, rest := a.wake.Match(text); matched {
			if a.debounce.Accept(time.Now()) {
				a.session.Activate(ctx, rest)
			} else {
				a.logger.Debug("wake detection suppressed by debounce")
			}
		}

	case domain.StateSleeping:
		if matched, rest := a.wake.Match(text); matched {
			if a.debounce.Accept(time.Now()) {
				a.session.Activate(ctx, rest)
			}
		} else {
			a.session.RejectAsleep(ctx)
		}
	}
}

//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"

	"jarvis/internal/domain"
)

const (
	// fluxRiseFactor is how sharply flux must rise over the previous frame
	// before a frame counts as a speech onset.
	fluxRiseFactor = 1.75
	// fluxFallFactor marks the start of trailing silence.
	fluxFallFactor = 1.75
	// duckFactor raises the onset floor while the assistant is speaking, so
	// its own playback does not trigger capture at normal sensitivity.
	duckFactor = 3.0
)

type MicrophoneConfig struct {
	SampleRate      int
	FramesPerBuffer int
	FluxThreshold   float64       // absolute onset floor
	QuietTime       time.Duration // trailing silence that ends an utterance
	MaxUtterance    time.Duration // hard cap on a single utterance
	Archive         *Archive      // optional
}

// MicrophoneSource captures from the default input device and segments the
// stream into utterances with spectral-flux voice activity detection. It
// also implements sensitivity ducking for the speech gate.
type MicrophoneSource struct {
	cfg    MicrophoneConfig
	logger *slog.Logger

	ducked atomic.Bool

	mu     sync.Mutex
	stream *portaudio.Stream
	in     []int16
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewMicrophoneSource(cfg MicrophoneConfig, logger *slog.Logger) *MicrophoneSource {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = 1024
	}
	if cfg.FluxThreshold <= 0 {
		cfg.FluxThreshold = 8.0
	}
	if cfg.QuietTime <= 0 {
		cfg.QuietTime = 700 * time.Millisecond
	}
	if cfg.MaxUtterance <= 0 {
		cfg.MaxUtterance = 15 * time.Second
	}
	return &MicrophoneSource{cfg: cfg, logger: logger}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

// SetDucked raises or restores the detection threshold. Called from the
// speech gate on playback edges.
func (m *MicrophoneSource) SetDucked(ducked bool) {
	m.ducked.Store(ducked)
}

func (m *MicrophoneSource) Start(ctx context.Context, sink domain.UtteranceSink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream != nil {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	m.in = make([]int16, m.cfg.FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.cfg.SampleRate), len(m.in), m.in)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.stream = stream
	m.done = make(chan struct{})

	m.wg.Add(1)
	go m.capture(ctx, sink)

	m.logger.Info("microphone started",
		"sampleRate", m.cfg.SampleRate, "framesPerBuffer", m.cfg.FramesPerBuffer)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return nil
	}

	close(m.done)
	m.stream.Stop()
	m.stream.Close()
	m.stream = nil
	portaudio.Terminate()

	m.wg.Wait()
	return nil
}

func (m *MicrophoneSource) capture(ctx context.Context, sink domain.UtteranceSink) {
	defer m.wg.Done()

	vad := NewVAD(len(m.in))
	preRoll := newPreRollBuffer(len(m.in) * 2)

	var (
		recording  bool
		quiet      bool
		quietStart time.Time
		startedAt  time.Time
		lastFlux   float64
		samples    []int16
	)

	reset := func() {
		recording = false
		quiet = false
		lastFlux = 0
		samples = nil
		preRoll.Clear()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		default:
		}

		if err := m.stream.Read(); err != nil {
			select {
			case <-m.done:
			default:
				m.logger.Error("microphone read failed, listening disabled", "error", err)
			}
			return
		}

		frame := make([]int16, len(m.in))
		copy(frame, m.in)

		if recording {
			samples = append(samples, frame...)
		} else {
			preRoll.Add(frame)
		}

		flux := vad.Flux(frame)
		if lastFlux == 0 {
			lastFlux = flux
			continue
		}

		if !recording {
			threshold := m.cfg.FluxThreshold
			if m.ducked.Load() {
				threshold *= duckFactor
			}
			if flux >= lastFlux*fluxRiseFactor && flux >= threshold {
				recording = true
				startedAt = time.Now()
				samples = append(samples, preRoll.Read()...)
			}
			lastFlux = flux
			continue
		}

		if flux*fluxFallFactor <= lastFlux {
			if !quiet {
				quiet = true
				quietStart = time.Now()
			} else if time.Since(quietStart) > m.cfg.QuietTime {
				m.emit(sink, samples)
				reset()
			}
		} else {
			quiet = false
			lastFlux = flux
		}

		if recording && time.Since(startedAt) > m.cfg.MaxUtterance {
			m.logger.Debug("utterance hit the length cap, cutting it off")
			m.emit(sink, samples)
			reset()
		}
	}
}

func (m *MicrophoneSource) emit(sink domain.UtteranceSink, samples []int16) {
	// Anything shorter than a quarter second is a click, not speech.
	if len(samples) < m.cfg.SampleRate/4 {
		return
	}

	u := domain.Utterance{
		ID:         uuid.NewString(),
		Audio:      samplesToWav(samples, m.cfg.SampleRate),
		CapturedAt: time.Now(),
	}

	if !sink.Offer(u) {
		m.logger.Warn("utterance dropped at the sink", "id", u.ID)
	}

	if m.cfg.Archive != nil {
		if err := m.cfg.Archive.Save(u.ID, samples); err != nil {
			m.logger.Warn("archiving utterance failed", "id", u.ID, "error", err)
		}
	}
}

package tests

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"jarvis/internal/application"
	"jarvis/internal/domain"
	"jarvis/internal/infra/audio"
)

type spokenLines struct {
	mu    sync.Mutex
	lines []string
}

func (s *spokenLines) Say(_ context.Context, text string) error {
	s.mu.Lock()
	s.lines = append(s.lines, text)
	s.mu.Unlock()
	return nil
}

func (s *spokenLines) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

type dispatched struct {
	mu   sync.Mutex
	cmds []string
}

func (d *dispatched) Dispatch(_ context.Context, text string) error {
	d.mu.Lock()
	d.cmds = append(d.cmds, text)
	d.mu.Unlock()
	return nil
}

func (d *dispatched) commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.cmds...)
}

type mappedRecognizer struct {
	mu      sync.Mutex
	results map[string]string
	calls   int
}

func (r *mappedRecognizer) Recognize(_ context.Context, audioData []byte) (domain.Recognition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return domain.Recognition{Text: r.results[string(audioData)], Confidence: 0.9}, nil
}

func (r *mappedRecognizer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func buildAssistant(t *testing.T, source application.AudioSource, rec application.Recognizer, speech application.SpeechOutput, router application.CommandRouter) (*application.Assistant, *application.UtteranceQueue, *application.Session) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	queue := application.NewUtteranceQueue(8, logger)
	gate := application.NewSpeechGate()
	session := application.NewSession(speech, router, nil, "hey jarvis", logger)
	monitor := application.NewInactivityMonitor(session, time.Hour, time.Hour, logger)
	wake := application.NewWakeMatcher([]string{"hey jarvis", "jarvis"})
	debounce := application.NewWakeDebouncer(time.Second)

	return application.NewAssistant(source, queue, rec, session, wake, debounce, gate, monitor, logger), queue, session
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestIntegration_HTTPWakeAndCommand(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := audio.NewHTTPSource("127.0.0.1:0", "", logger)

	rec := &mappedRecognizer{results: map[string]string{
		"wake-audio":    "hey jarvis",
		"command-audio": "turn on the kitchen light",
	}}
	speech := &spokenLines{}
	router := &dispatched{}

	assistant, queue, session := buildAssistant(t, source, rec, speech, router)
	source.SetStats(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go assistant.Run(ctx)

	waitFor(t, func() bool {
		rr := httptest.NewRecorder()
		source.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		return rr.Code == http.StatusOK
	}, "http source never became healthy")

	post := func(path string, body []byte) int {
		rr := httptest.NewRecorder()
		source.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body)))
		return rr.Code
	}

	if code := post("/utterance", []byte("wake-audio")); code != http.StatusAccepted {
		t.Fatalf("posting wake audio: status %d", code)
	}
	waitFor(t, func() bool { return session.State() == domain.StateActive },
		"wake audio never activated the session")
	if speech.count() != 1 {
		t.Errorf("expected one acknowledgment, got %d lines", speech.count())
	}

	if code := post("/utterance", []byte("command-audio")); code != http.StatusAccepted {
		t.Fatalf("posting command audio: status %d", code)
	}
	waitFor(t, func() bool {
		got := router.commands()
		return len(got) == 1 && got[0] == "turn on the kitchen light"
	}, "command never reached the router")
}

func TestIntegration_HTTPTextCommandSkipsRecognition(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := audio.NewHTTPSource("127.0.0.1:0", "", logger)

	rec := &mappedRecognizer{results: map[string]string{"wake-audio": "hey jarvis"}}
	router := &dispatched{}

	assistant, _, session := buildAssistant(t, source, rec, &spokenLines{}, router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go assistant.Run(ctx)

	waitFor(t, func() bool {
		rr := httptest.NewRecorder()
		source.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		return rr.Code == http.StatusOK
	}, "http source never became healthy")

	post := func(path string, body []byte) {
		rr := httptest.NewRecorder()
		source.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body)))
		if rr.Code != http.StatusAccepted {
			t.Fatalf("POST %s: status %d", path, rr.Code)
		}
	}

	post("/utterance", []byte("wake-audio"))
	waitFor(t, func() bool { return session.State() == domain.StateActive },
		"session never activated")

	callsBefore := rec.callCount()
	post("/text", []byte("play some jazz"))

	waitFor(t, func() bool {
		got := router.commands()
		return len(got) == 1 && got[0] == "play some jazz"
	}, "text command never reached the router")

	if rec.callCount() != callsBefore {
		t.Error("recognition must not run for text commands")
	}
}

func TestIntegration_FileSourceFeedsTheLoop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "drop/wake.wav", []byte("wake-audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	source := audio.NewFileSource(fs, "drop", logger)
	rec := &mappedRecognizer{results: map[string]string{"wake-audio": "hey jarvis open spotify"}}
	router := &dispatched{}

	assistant, _, session := buildAssistant(t, source, rec, &spokenLines{}, router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go assistant.Run(ctx)

	waitFor(t, func() bool { return session.State() == domain.StateActive },
		"file utterance never activated the session")
	waitFor(t, func() bool {
		got := router.commands()
		return len(got) == 1 && got[0] == "open spotify"
	}, "trailing words never reached the router")
}

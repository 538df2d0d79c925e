package application_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"jarvis/internal/application"
	"jarvis/internal/domain"
)

type speechRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (s *speechRecorder) Say(_ context.Context, text string) error {
	s.mu.Lock()
	s.lines = append(s.lines, text)
	s.mu.Unlock()
	return nil
}

func (s *speechRecorder) spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

type routerRecorder struct {
	mu   sync.Mutex
	cmds []string
}

func (r *routerRecorder) Dispatch(_ context.Context, text string) error {
	r.mu.Lock()
	r.cmds = append(r.cmds, text)
	r.mu.Unlock()
	return nil
}

func (r *routerRecorder) dispatched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cmds...)
}

type observerRecorder struct {
	activated chan struct{}
	woke      chan struct{}
	slept     chan struct{}
}

func newObserverRecorder() *observerRecorder {
	return &observerRecorder{
		activated: make(chan struct{}, 8),
		woke:      make(chan struct{}, 8),
		slept:     make(chan struct{}, 8),
	}
}

func (o *observerRecorder) OnActivate() { o.activated <- struct{}{} }
func (o *observerRecorder) OnWake()     { o.woke <- struct{}{} }
func (o *observerRecorder) OnSleep()    { o.slept <- struct{}{} }

func waitSignal(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func newTestSession(speech application.SpeechOutput, router application.CommandRouter, observer application.StateObserver) *application.Session {
	return application.NewSession(speech, router, observer, "hey jarvis", testLogger())
}

func TestSession_ActivateSpeaksAckAndGoesActive(t *testing.T) {
	speech := &speechRecorder{}
	session := newTestSession(speech, nil, nil)

	session.Activate(context.Background(), "")

	if got := session.State(); got != domain.StateActive {
		t.Fatalf("state = %v, want Active", got)
	}
	if len(speech.spoken()) != 1 {
		t.Errorf("expected exactly one acknowledgment, got %v", speech.spoken())
	}
}

func TestSession_ActivateIsIdempotent(t *testing.T) {
	speech := &speechRecorder{}
	session := newTestSession(speech, nil, nil)

	session.Activate(context.Background(), "")
	session.Activate(context.Background(), "")
	session.Activate(context.Background(), "")

	if len(speech.spoken()) != 1 {
		t.Errorf("repeated wakes must not repeat the acknowledgment, spoke %v", speech.spoken())
	}
}

func TestSession_ActivateDispatchesTrailingWords(t *testing.T) {
	router := &routerRecorder{}
	session := newTestSession(&speechRecorder{}, router, nil)

	session.Activate(context.Background(), "open spotify")

	got := router.dispatched()
	if len(got) != 1 || got[0] != "open spotify" {
		t.Errorf("expected [open spotify], got %v", got)
	}
	if session.State() != domain.StateActive {
		t.Error("session must stay active after the first command")
	}
}

func TestSession_CommandOutsideActiveDropped(t *testing.T) {
	router := &routerRecorder{}
	session := newTestSession(&speechRecorder{}, router, nil)

	session.HandleCommand(context.Background(), "open the door")

	if got := router.dispatched(); len(got) != 0 {
		t.Errorf("idle session must not dispatch, got %v", got)
	}
}

func TestSession_ExpireSilentSessionSpeaksUp(t *testing.T) {
	speech := &speechRecorder{}
	session := newTestSession(speech, nil, nil)

	session.Activate(context.Background(), "")
	session.ExpireToIdle(context.Background())

	if session.State() != domain.StateIdle {
		t.Fatalf("state = %v, want Idle", session.State())
	}
	lines := speech.spoken()
	if len(lines) != 2 || lines[1] != domain.LineNothingHeard {
		t.Errorf("silent session must end with %q, got %v", domain.LineNothingHeard, lines)
	}
}

func TestSession_ExpireAfterCommandsIsQuiet(t *testing.T) {
	speech := &speechRecorder{}
	session := newTestSession(speech, &routerRecorder{}, nil)

	session.Activate(context.Background(), "")
	session.HandleCommand(context.Background(), "what time is it")
	session.ExpireToIdle(context.Background())

	if lines := speech.spoken(); len(lines) != 1 {
		t.Errorf("expiry after commands must be silent, spoke %v", lines)
	}
}

func TestSession_FallAsleepOnlyFromIdle(t *testing.T) {
	speech := &speechRecorder{}
	session := newTestSession(speech, nil, nil)

	session.Activate(context.Background(), "")
	session.FallAsleep(context.Background())
	if session.State() != domain.StateActive {
		t.Fatal("active session must not fall asleep")
	}

	session.ExpireToIdle(context.Background())
	session.FallAsleep(context.Background())
	if session.State() != domain.StateSleeping {
		t.Fatalf("state = %v, want Sleeping", session.State())
	}
}

func TestSession_RejectAsleepNamesWakePhrase(t *testing.T) {
	speech := &speechRecorder{}
	session := newTestSession(speech, nil, nil)

	session.RejectAsleep(context.Background())

	lines := speech.spoken()
	if len(lines) != 1 || !strings.Contains(lines[0], "hey jarvis") {
		t.Errorf("reminder must name the wake phrase, got %v", lines)
	}
}

func TestSession_ObserverHooks(t *testing.T) {
	obs := newObserverRecorder()
	session := newTestSession(&speechRecorder{}, nil, obs)

	session.Activate(context.Background(), "")
	waitSignal(t, obs.activated, "OnActivate")

	session.ExpireToIdle(context.Background())
	session.FallAsleep(context.Background())
	waitSignal(t, obs.slept, "OnSleep")

	session.Activate(context.Background(), "")
	waitSignal(t, obs.woke, "OnWake")
	waitSignal(t, obs.activated, "second OnActivate")
}

package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"jarvis/internal/domain"
)

// Session is the state machine at the center of the assistant. All reads and
// writes of the state, the inactivity clock and the per-session command
// count happen under one mutex; spoken side effects happen outside it.
//
// Transitions:
//
//	Idle     --wake accepted--> Activating --(automatic)--> Active
//	Active   --command-->       Active      (refreshes the clock)
//	Active   --timeout-->       Idle        (InactivityMonitor)
//	Idle     --long timeout-->  Sleeping    (InactivityMonitor)
//	Sleeping --wake accepted--> Activating  (OnWake fires first)
type Session struct {
	mu              sync.Mutex
	state           domain.SessionState
	lastInteraction time.Time // zero until the first interaction
	commands        int       // commands dispatched in the current session

	speech   SpeechOutput
	router   CommandRouter
	observer StateObserver
	wakeHint string // first configured wake phrase, used in spoken reminders
	logger   *slog.Logger
}

func NewSession(speech SpeechOutput, router CommandRouter, observer StateObserver, wakeHint string, logger *slog.Logger) *Session {
	if observer == nil {
		observer = &NoopObserver{}
	}
	if router == nil {
		router = &NoopRouter{}
	}
	return &Session{
		state:    domain.StateIdle,
		speech:   speech,
		router:   router,
		observer: observer,
		wakeHint: wakeHint,
		logger:   logger,
	}
}

func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the state and the inactivity clock in one locked read,
// for the inactivity monitor.
func (s *Session) Snapshot() (domain.SessionState, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastInteraction
}

// Activate handles an accepted wake detection from Idle or Sleeping. It is
// idempotent: a wake while already activating or active is a no-op, so
// overlapping detections cannot re-enter the acknowledgment. initial carries
// any words spoken after the wake phrase; they become the session's first
// command.
func (s *Session) Activate(ctx context.Context, initial string) {
	s.mu.Lock()
	switch s.state {
	case domain.StateActivating, domain.StateActive:
		s.mu.Unlock()
		s.logger.Debug("wake ignored, session already active")
		return
	case domain.StateSleeping:
		s.notifyAsync(s.observer.OnWake)
	}
	s.state = domain.StateActivating
	s.mu.Unlock()

	s.notifyAsync(s.observer.OnActivate)

	if err := s.speech.Say(ctx, domain.PickWakeAck()); err != nil {
		s.logger.Debug("wake acknowledgment failed", "error", err)
	}

	s.mu.Lock()
	s.state = domain.StateActive
	s.lastInteraction = time.Now()
	s.commands = 0
	s.mu.Unlock()

	s.logger.Info("session active")

	if strings.TrimSpace(initial) != "" {
		s.HandleCommand(ctx, initial)
	}
}

// HandleCommand forwards in-session text to the router and refreshes the
// inactivity clock on both sides of the dispatch, so a slow handler does not
// eat the session.
func (s *Session) HandleCommand(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	if s.state != domain.StateActive {
		s.mu.Unlock()
		s.logger.Debug("command outside active session dropped", "text", text)
		return
	}
	s.lastInteraction = time.Now()
	s.commands++
	s.mu.Unlock()

	s.logger.Info("dispatching command", "text", text)
	if err := s.router.Dispatch(ctx, text); err != nil {
		s.logger.Error("dispatching command", "error", err)
	}

	s.Touch()
}

// Touch refreshes the inactivity clock.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastInteraction = time.Now()
	s.mu.Unlock()
}

// ExpireToIdle ends an active session after inactivity. Called by the
// inactivity monitor only. If the session saw no commands at all, the
// assistant says so instead of vanishing silently.
func (s *Session) ExpireToIdle(ctx context.Context) {
	s.mu.Lock()
	if s.state != domain.StateActive {
		s.mu.Unlock()
		return
	}
	s.state = domain.StateIdle
	silent := s.commands == 0
	s.mu.Unlock()

	s.logger.Info("session expired, back to wake-phrase listening")

	if silent {
		if err := s.speech.Say(ctx, domain.LineNothingHeard); err != nil {
			s.logger.Debug("timeout line failed", "error", err)
		}
	}
}

// FallAsleep moves an idle assistant into sleep mode after long inactivity.
// Called by the inactivity monitor only.
func (s *Session) FallAsleep(ctx context.Context) {
	s.mu.Lock()
	if s.state != domain.StateIdle {
		s.mu.Unlock()
		return
	}
	s.state = domain.StateSleeping
	s.mu.Unlock()

	s.notifyAsync(s.observer.OnSleep)
	s.logger.Info("entering sleep mode")

	if err := s.speech.Say(ctx, domain.PickSleepLine()); err != nil {
		s.logger.Debug("sleep line failed", "error", err)
	}
}

// RejectAsleep answers recognized non-wake speech while sleeping with a
// reminder; the speech itself is never dispatched.
func (s *Session) RejectAsleep(ctx context.Context) {
	if err := s.speech.Say(ctx, domain.AsleepReminder(s.wakeHint)); err != nil {
		s.logger.Debug("asleep reminder failed", "error", err)
	}
}

// notifyAsync runs an observer hook fire-and-forget so a slow or blocking
// collaborator cannot stall a transition.
func (s *Session) notifyAsync(fn func()) {
	if fn == nil {
		return
	}
	go fn()
}

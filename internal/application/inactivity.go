package application

import (
	"context"
	"log/slog"
	"time"

	"jarvis/internal/domain"
)

// InactivityMonitor drives the timer-side transitions of the session:
// Active to Idle after the session timeout, Idle to Sleeping after the much
// longer sleep timeout. It never fires while the assistant is sleeping, and
// never before the first interaction: the assistant does not fall asleep
// before it has ever been used.
type InactivityMonitor struct {
	session        *Session
	sessionTimeout time.Duration
	sleepTimeout   time.Duration
	tick           time.Duration
	logger         *slog.Logger
}

func NewInactivityMonitor(session *Session, sessionTimeout, sleepTimeout time.Duration, logger *slog.Logger) *InactivityMonitor {
	if sessionTimeout <= 0 {
		sessionTimeout = 12 * time.Second
	}
	if sleepTimeout <= 0 {
		sleepTimeout = 120 * time.Second
	}
	return &InactivityMonitor{
		session:        session,
		sessionTimeout: sessionTimeout,
		sleepTimeout:   sleepTimeout,
		tick:           time.Second,
		logger:         logger,
	}
}

// Run blocks until ctx is done.
func (m *InactivityMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.check(ctx, now)
		}
	}
}

func (m *InactivityMonitor) check(ctx context.Context, now time.Time) {
	state, last := m.session.Snapshot()
	if last.IsZero() {
		return
	}
	idle := now.Sub(last)

	switch state {
	case domain.StateActive:
		if idle >= m.sessionTimeout {
			m.logger.Debug("session inactivity timeout", "idle", idle)
			m.session.ExpireToIdle(ctx)
		}
	case domain.StateIdle:
		if idle >= m.sleepTimeout {
			m.logger.Debug("sleep inactivity timeout", "idle", idle)
			m.session.FallAsleep(ctx)
		}
	}
}

package application

import (
	"sync"
	"time"
)

// WakeDebouncer suppresses the repeated wake detections that recognizers
// emit for a single spoken phrase ("jar... jar... jarvis"). Only the first
// detection inside the window is accepted; without this a single "hey
// jarvis" could trigger overlapping activation attempts.
type WakeDebouncer struct {
	mu     sync.Mutex
	window time.Duration
	last   time.Time
}

func NewWakeDebouncer(window time.Duration) *WakeDebouncer {
	if window <= 0 {
		window = time.Second
	}
	return &WakeDebouncer{window: window}
}

// Accept reports whether a wake detection at now may activate the session.
func (d *WakeDebouncer) Accept(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		return false
	}
	d.last = now
	return true
}

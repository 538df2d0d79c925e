package application

// StateObserver receives session transitions for status/UI collaborators.
// The session invokes each hook from a short-lived goroutine, so
// implementations may block without stalling the core, and must not assume
// ordering between hooks.
type StateObserver interface {
	// OnActivate fires when a wake phrase is accepted and a session starts.
	OnActivate()
	// OnWake fires when the assistant leaves sleep mode, before OnActivate.
	OnWake()
	// OnSleep fires when long inactivity puts the assistant to sleep.
	OnSleep()
}

type NoopObserver struct{}

func (n *NoopObserver) OnActivate() {}
func (n *NoopObserver) OnWake()     {}
func (n *NoopObserver) OnSleep()    {}

package domain

// SessionState is the single mode the assistant is in at any instant.
type SessionState int

const (
	// StateIdle: passively listening, only the wake phrase is acted on.
	StateIdle SessionState = iota
	// StateActivating: a wake phrase was accepted and the acknowledgment is
	// being spoken; follows through to StateActive with no further event.
	StateActivating
	// StateActive: free-form commands are forwarded to the router.
	StateActive
	// StateSleeping: long inactivity; recognized non-wake speech is rejected
	// with a spoken reminder.
	StateSleeping
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

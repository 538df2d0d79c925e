package application

import "context"

// CommandRouter receives recognized in-session command text. Dispatch is
// fire-and-forget from the core's point of view: failures belong to the
// router and are only logged by the caller.
type CommandRouter interface {
	Dispatch(ctx context.Context, text string) error
}

// NoopRouter discards commands. Default when no backend is configured.
type NoopRouter struct{}

func (n *NoopRouter) Dispatch(_ context.Context, _ string) error {
	return nil
}

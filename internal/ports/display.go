package ports

import (
	"context"

	"github.com/xvierd/flow-focus/internal/domain"
)

// DisplayHost performs the platform-specific persistent display operations.
// This is a driven port (implemented by adapters).
//
// Calls are made from the focus service's processing loop with a bounded
// context; implementations must return promptly once ctx is done.
type DisplayHost interface {
	// Begin shows the persistent display. Idempotent while already active.
	Begin(ctx context.Context, content domain.Content) error

	// Update refreshes the persistent display.
	Update(ctx context.Context, content domain.Content) error

	// End removes the persistent display.
	End(ctx context.Context) error
}

// SessionListener is notified when a session ends, either by reaching zero
// or by being stopped.
// This is a driven port (implemented by adapters).
type SessionListener interface {
	SessionEnded(ctx context.Context, record domain.SessionRecord) error
}

// SessionListenerFunc adapts a function to SessionListener.
type SessionListenerFunc func(ctx context.Context, record domain.SessionRecord) error

// SessionEnded implements SessionListener.
func (f SessionListenerFunc) SessionEnded(ctx context.Context, record domain.SessionRecord) error {
	return f(ctx, record)
}

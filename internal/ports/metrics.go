package ports

import (
	"context"

	"github.com/xvierd/flow-focus/internal/domain"
)

// Metrics records focus service activity.
// This is a driven port (implemented by adapters).
type Metrics interface {
	// CommandApplied counts a command; changed is false for no-op transitions.
	CommandApplied(ctx context.Context, command string, changed bool)

	// TickObserved counts a delivered countdown tick.
	TickObserved(ctx context.Context)

	// DisplayFailed counts a display host call that returned an error.
	DisplayFailed(ctx context.Context, op string)

	// SessionEnded records the outcome and focused time of an ended session.
	SessionEnded(ctx context.Context, record domain.SessionRecord)

	// Close flushes and shuts down the recorder.
	Close(ctx context.Context) error
}

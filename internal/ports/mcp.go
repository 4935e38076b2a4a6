package ports

import (
	"context"
	"time"

	"github.com/xvierd/flow-focus/internal/domain"
)

// FocusCommander is the inbound command surface of the focus service.
// This is a driving port (called by the MCP bridge and the CLI).
type FocusCommander interface {
	// Start begins a session, or continues a paused one.
	// A non-positive duration selects the configured default.
	Start(ctx context.Context, duration time.Duration) error

	// StartSession begins a session of the given type, or continues a
	// paused one. A non-positive duration selects the type's default.
	StartSession(ctx context.Context, t domain.SessionType, duration time.Duration) error

	// Pause freezes a running session.
	Pause(ctx context.Context) error

	// Resume continues a paused session.
	Resume(ctx context.Context) error

	// Stop ends the session and tears down the display.
	Stop(ctx context.Context) error

	// Snapshot returns a copy of the current session.
	Snapshot(ctx context.Context) (domain.Session, error)
}

// HistoryProvider exposes recorded sessions to the MCP bridge.
// This is a driven port (implemented by the services layer).
type HistoryProvider interface {
	// RecentSessions returns up to limit of the most recently ended sessions.
	RecentSessions(ctx context.Context, limit int) ([]domain.SessionRecord, error)

	// TodayStats returns today's aggregated history.
	TodayStats(ctx context.Context) (*domain.DailyStats, error)
}

// Package ports defines the interfaces (driven and driving ports)
// for the focus application following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"
	"time"

	"github.com/xvierd/flow-focus/internal/domain"
)

// SessionRepository defines the interface for session history persistence.
// Only ended sessions are stored; a live session never touches storage.
// This is a driven port (implemented by adapters).
type SessionRepository interface {
	// Save persists an ended session.
	Save(ctx context.Context, record domain.SessionRecord) error

	// FindByID retrieves a record by its session identifier.
	FindByID(ctx context.Context, id string) (*domain.SessionRecord, error)

	// FindRecent retrieves records that ended at or after since, newest first.
	FindRecent(ctx context.Context, since time.Time, limit int) ([]domain.SessionRecord, error)

	// SearchByBranch fuzzy-matches records on their git branch, best match first.
	SearchByBranch(ctx context.Context, query string, limit int) ([]domain.SessionRecord, error)

	// GetDailyStats returns aggregated statistics for a specific date.
	GetDailyStats(ctx context.Context, date time.Time) (*domain.DailyStats, error)
}

// Storage is the combined repository interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// Sessions provides access to session history.
	Sessions() SessionRepository

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}

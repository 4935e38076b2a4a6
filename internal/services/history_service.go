package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

// historyWindow bounds how far back RecentSessions looks.
const historyWindow = 30 * 24 * time.Hour

// HistoryService records ended sessions and answers questions about them.
// It is both a session listener and the history provider for the MCP bridge.
type HistoryService struct {
	storage ports.Storage
	clock   ports.Clock
	logger  *slog.Logger
}

// Ensure HistoryService implements the ports it serves.
var (
	_ ports.SessionListener = (*HistoryService)(nil)
	_ ports.HistoryProvider = (*HistoryService)(nil)
)

// NewHistoryService creates a new history service.
func NewHistoryService(storage ports.Storage, clock ports.Clock) *HistoryService {
	return &HistoryService{
		storage: storage,
		clock:   clock,
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger.
func (s *HistoryService) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SessionEnded saves the record. A record that was already saved is ignored.
func (s *HistoryService) SessionEnded(ctx context.Context, record domain.SessionRecord) error {
	err := s.storage.Sessions().Save(ctx, record)
	if errors.Is(err, domain.ErrDuplicateSession) {
		s.logger.Debug("session already recorded", slog.String("session", record.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("record session %s: %w", record.ID, err)
	}

	s.logger.Info("session recorded",
		slog.String("session", record.ID),
		slog.String("type", string(record.Type)),
		slog.String("outcome", string(record.Outcome)),
		slog.Duration("focused", record.Focused()))
	return nil
}

// RecentSessions returns up to limit of the most recently ended sessions.
func (s *HistoryService) RecentSessions(ctx context.Context, limit int) ([]domain.SessionRecord, error) {
	since := s.clock.Now().Add(-historyWindow)
	return s.storage.Sessions().FindRecent(ctx, since, limit)
}

// SessionsOnBranch returns up to limit sessions whose git branch fuzzy-matches query.
func (s *HistoryService) SessionsOnBranch(ctx context.Context, query string, limit int) ([]domain.SessionRecord, error) {
	return s.storage.Sessions().SearchByBranch(ctx, query, limit)
}

// TodayStats returns today's aggregated history.
func (s *HistoryService) TodayStats(ctx context.Context) (*domain.DailyStats, error) {
	return s.storage.Sessions().GetDailyStats(ctx, s.clock.Now())
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

const sessionColumns = `id, session_type, outcome, total_ms, remaining_ms, started_at, ended_at, git_branch, git_commit`

// sessionRepository implements ports.SessionRepository using SQLite.
type sessionRepository struct {
	db *sql.DB
}

// newSessionRepository creates a new session repository.
func newSessionRepository(db *sql.DB) ports.SessionRepository {
	return &sessionRepository{db: db}
}

// Save persists an ended session. Timestamps are stored as unix milliseconds.
func (r *sessionRepository) Save(ctx context.Context, record domain.SessionRecord) error {
	query := `INSERT INTO focus_sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sessionType := record.Type
	if sessionType == "" {
		sessionType = domain.TypeFocus
	}

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		string(sessionType),
		string(record.Outcome),
		record.Total.Milliseconds(),
		record.Remaining.Milliseconds(),
		record.StartedAt.UnixMilli(),
		record.EndedAt.UnixMilli(),
		record.GitBranch,
		record.GitCommit,
	)
	if isUniqueConstraintError(err) {
		return domain.ErrDuplicateSession
	}
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// FindByID retrieves a record by its session identifier.
func (r *sessionRepository) FindByID(ctx context.Context, id string) (*domain.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM focus_sessions WHERE id = ?`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &record, nil
}

// FindRecent retrieves records that ended at or after since, newest first.
// A non-positive limit returns every match.
func (r *sessionRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]domain.SessionRecord, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM focus_sessions
		WHERE ended_at >= ?
		ORDER BY ended_at DESC
		LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, query, since.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// SearchByBranch fuzzy-matches records on their git branch, best match first.
// Records without a branch never match.
func (r *sessionRepository) SearchByBranch(ctx context.Context, query string, limit int) ([]domain.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM focus_sessions
		WHERE git_branch != ''
		ORDER BY ended_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions for branch search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	branches := make([]string, len(records))
	for i, record := range records {
		branches[i] = record.GitBranch
	}

	matches := fuzzy.Find(query, branches)

	var result []domain.SessionRecord
	for _, match := range matches {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, records[match.Index])
	}

	return result, nil
}

// GetDailyStats returns aggregated statistics for the day containing date,
// in date's location. Breaks are counted separately from focus sessions.
func (r *sessionRepository) GetDailyStats(ctx context.Context, date time.Time) (*domain.DailyStats, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	query := `
		SELECT
			COUNT(CASE WHEN session_type = ? AND outcome = ? THEN 1 END),
			COUNT(CASE WHEN session_type = ? AND outcome = ? THEN 1 END),
			COALESCE(SUM(CASE WHEN session_type = ? THEN total_ms - remaining_ms END), 0),
			COUNT(CASE WHEN session_type != ? THEN 1 END)
		FROM focus_sessions
		WHERE ended_at >= ? AND ended_at < ?
	`

	stats := &domain.DailyStats{
		Date: startOfDay,
	}

	var focusMs int64
	focus := string(domain.TypeFocus)
	err := r.db.QueryRowContext(ctx, query,
		focus, string(domain.OutcomeCompleted),
		focus, string(domain.OutcomeStopped),
		focus,
		focus,
		startOfDay.UnixMilli(),
		endOfDay.UnixMilli(),
	).Scan(&stats.Completed, &stats.Stopped, &focusMs, &stats.Breaks)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	stats.FocusTime = time.Duration(focusMs) * time.Millisecond

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.SessionRecord, error) {
	var record domain.SessionRecord
	var sessionType, outcome string
	var totalMs, remainingMs, startedMs, endedMs int64

	err := row.Scan(
		&record.ID,
		&sessionType,
		&outcome,
		&totalMs,
		&remainingMs,
		&startedMs,
		&endedMs,
		&record.GitBranch,
		&record.GitCommit,
	)
	if err != nil {
		return domain.SessionRecord{}, err
	}

	record.Type = domain.SessionType(sessionType)
	record.Outcome = domain.Outcome(outcome)
	record.Total = time.Duration(totalMs) * time.Millisecond
	record.Remaining = time.Duration(remainingMs) * time.Millisecond
	record.StartedAt = time.UnixMilli(startedMs)
	record.EndedAt = time.UnixMilli(endedMs)
	return record, nil
}

func scanRecords(rows *sql.Rows) ([]domain.SessionRecord, error) {
	var records []domain.SessionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return records, nil
}

package domain

import "time"

// Outcome describes how a session ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeStopped   Outcome = "stopped"
)

// SessionRecord is the history entry left behind by an ended session.
type SessionRecord struct {
	ID        string
	Type      SessionType
	Outcome   Outcome
	Total     time.Duration
	Remaining time.Duration
	StartedAt time.Time
	EndedAt   time.Time
	GitBranch string
	GitCommit string
}

// NewSessionRecord captures the session at the moment it ended.
func NewSessionRecord(s Session, outcome Outcome, endedAt time.Time) SessionRecord {
	return SessionRecord{
		ID:        s.ID,
		Type:      s.Type,
		Outcome:   outcome,
		Total:     s.Total,
		Remaining: s.Remaining,
		StartedAt: s.StartedAt,
		EndedAt:   endedAt,
		GitBranch: s.GitBranch,
		GitCommit: s.GitCommit,
	}
}

// Focused returns how long the user actually counted down.
func (r SessionRecord) Focused() time.Duration {
	return r.Total - r.Remaining
}

// IsCompleted returns true if the countdown reached zero.
func (r SessionRecord) IsCompleted() bool {
	return r.Outcome == OutcomeCompleted
}

// IsBreak returns true if the record is a short or long break.
func (r SessionRecord) IsBreak() bool {
	return r.Type.IsBreak()
}

// DailyStats aggregates session history for a day. Completed, Stopped and
// FocusTime count focus sessions only.
type DailyStats struct {
	Date      time.Time
	Completed int
	Stopped   int
	FocusTime time.Duration
	Breaks    int
}

// GetOutcomeLabel returns a human-readable label for an outcome.
func GetOutcomeLabel(o Outcome) string {
	switch o {
	case OutcomeCompleted:
		return "Completed"
	case OutcomeStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

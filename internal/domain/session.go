// Package domain contains the core entities of a focus session: the session
// itself, the history records it leaves behind, and the pure rendering of a
// session into display content. Nothing in here performs I/O.
package domain

import (
	"math/bits"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultDuration is used when a session is started without a duration.
	DefaultDuration = 25 * time.Minute

	// TickPeriod is the fixed interval between countdown ticks.
	TickPeriod = time.Second
)

// Session is the single focus interval owned by the focus service.
type Session struct {
	ID        string
	Type      SessionType
	State     State
	Total     time.Duration
	Remaining time.Duration
	EndsAt    time.Time
	StartedAt time.Time
	GitBranch string
	GitCommit string
}

// NewSession creates a fresh idle-to-running focus session of the given
// length. A non-positive duration falls back to DefaultDuration.
func NewSession(duration time.Duration, now time.Time) Session {
	return NewSessionOfType(TypeFocus, duration, now)
}

// NewSessionOfType creates a fresh session of type t. A non-positive
// duration falls back to the type's default length.
func NewSessionOfType(t SessionType, duration time.Duration, now time.Time) Session {
	if !t.IsValid() {
		t = TypeFocus
	}
	if duration <= 0 {
		duration = t.DefaultDuration()
	}
	return Session{
		ID:        generateID(),
		Type:      t,
		State:     StateIdle,
		Total:     duration,
		Remaining: duration,
		StartedAt: now,
	}
}

// Run moves the session into the running state and recomputes the end time
// from the current remaining time.
func (s *Session) Run(now time.Time) {
	s.State = StateRunning
	s.EndsAt = now.Add(s.Remaining)
}

// Pause freezes the session at its last observed remaining time.
func (s *Session) Pause() {
	if s.State != StateRunning {
		return
	}
	s.State = StatePaused
	s.EndsAt = time.Time{}
}

// Observe records a remaining time reported by the tick scheduler.
// Values that would make the countdown go backwards are ignored.
func (s *Session) Observe(remaining time.Duration) {
	if remaining < 0 {
		remaining = 0
	}
	if remaining > s.Remaining {
		return
	}
	s.Remaining = remaining
}

// Reset clears the session to a stopped, empty slate.
func (s *Session) Reset() {
	*s = Session{State: StateStopped}
}

// HasEndTime returns true if EndsAt carries a meaningful instant.
func (s Session) HasEndTime() bool {
	return s.State == StateRunning && !s.EndsAt.IsZero()
}

// Elapsed returns how much of the session has been counted down.
func (s Session) Elapsed() time.Duration {
	return s.Total - s.Remaining
}

// Progress returns the completion percentage, floored and clamped to 0..100.
func (s Session) Progress() int {
	if s.Total <= 0 {
		return 0
	}
	remaining := s.Remaining
	if remaining > s.Total {
		remaining = s.Total
	}
	if remaining < 0 {
		remaining = 0
	}
	// 128-bit product so long totals cannot overflow.
	hi, lo := bits.Mul64(uint64(s.Total-remaining), 100)
	pct, _ := bits.Div64(hi, lo, uint64(s.Total))
	return int(pct)
}

// SetGitContext stores git information for the session.
func (s *Session) SetGitContext(branch, commit string) {
	s.GitBranch = branch
	s.GitCommit = commit
}

// generateID creates a new unique identifier.
func generateID() string {
	return uuid.New().String()
}

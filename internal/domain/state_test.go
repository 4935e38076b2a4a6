package domain

import (
	"testing"
	"time"
)

func TestState_IsLive(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateIdle, false},
		{StateRunning, true},
		{StatePaused, true},
		{StateStopped, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsLive(); got != tt.want {
				t.Errorf("IsLive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_AcceptsFreshStart(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{"", true},
		{StateIdle, true},
		{StateRunning, false},
		{StatePaused, false},
		{StateStopped, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.AcceptsFreshStart(); got != tt.want {
				t.Errorf("AcceptsFreshStart() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetStateLabel(t *testing.T) {
	if got := GetStateLabel(StatePaused); got != "Paused" {
		t.Errorf("GetStateLabel(paused) = %q, want %q", got, "Paused")
	}
	if got := GetStateLabel(State("bogus")); got != "Unknown" {
		t.Errorf("GetStateLabel(bogus) = %q, want %q", got, "Unknown")
	}
}

func TestSessionRecord(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	s := NewSession(25*time.Minute, start)
	s.SetGitContext("feature/x", "deadbeef")
	s.Observe(5 * time.Minute)

	rec := NewSessionRecord(s, OutcomeStopped, start.Add(20*time.Minute))

	if rec.ID != s.ID {
		t.Errorf("ID = %q, want %q", rec.ID, s.ID)
	}
	if rec.Focused() != 20*time.Minute {
		t.Errorf("Focused() = %v, want 20m", rec.Focused())
	}
	if rec.IsCompleted() {
		t.Error("stopped record should not be completed")
	}
	if rec.GitBranch != "feature/x" || rec.GitCommit != "deadbeef" {
		t.Errorf("git context = %q/%q", rec.GitBranch, rec.GitCommit)
	}
	if GetOutcomeLabel(rec.Outcome) != "Stopped" {
		t.Errorf("GetOutcomeLabel() = %q", GetOutcomeLabel(rec.Outcome))
	}
}

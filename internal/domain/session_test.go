package domain

import (
	"math"
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("explicit duration", func(t *testing.T) {
		s := NewSession(60*time.Second, now)

		if s.ID == "" {
			t.Error("NewSession() ID is empty")
		}
		if s.Total != 60*time.Second {
			t.Errorf("Total = %v, want %v", s.Total, 60*time.Second)
		}
		if s.Remaining != s.Total {
			t.Errorf("Remaining = %v, want %v", s.Remaining, s.Total)
		}
		if !s.StartedAt.Equal(now) {
			t.Errorf("StartedAt = %v, want %v", s.StartedAt, now)
		}
		if s.HasEndTime() {
			t.Error("new session should not have an end time")
		}
	})

	t.Run("zero duration falls back to default", func(t *testing.T) {
		s := NewSession(0, now)
		if s.Total != 1500000*time.Millisecond {
			t.Errorf("Total = %v, want 25m", s.Total)
		}
	})

	t.Run("negative duration falls back to default", func(t *testing.T) {
		s := NewSession(-time.Minute, now)
		if s.Total != DefaultDuration {
			t.Errorf("Total = %v, want %v", s.Total, DefaultDuration)
		}
	})
}

func TestSession_Run(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	s := NewSession(90*time.Second, now)

	s.Run(now)

	if s.State != StateRunning {
		t.Errorf("State = %v, want %v", s.State, StateRunning)
	}
	if want := now.Add(90 * time.Second); !s.EndsAt.Equal(want) {
		t.Errorf("EndsAt = %v, want %v", s.EndsAt, want)
	}
	if !s.HasEndTime() {
		t.Error("running session should have an end time")
	}
}

func TestSession_Pause(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("running session", func(t *testing.T) {
		s := NewSession(time.Minute, now)
		s.Run(now)
		s.Observe(40 * time.Second)

		s.Pause()

		if s.State != StatePaused {
			t.Errorf("State = %v, want %v", s.State, StatePaused)
		}
		if s.Remaining != 40*time.Second {
			t.Errorf("Remaining = %v, want %v", s.Remaining, 40*time.Second)
		}
		if s.HasEndTime() || !s.EndsAt.IsZero() {
			t.Error("paused session should not have an end time")
		}
	})

	t.Run("idle session is untouched", func(t *testing.T) {
		s := NewSession(time.Minute, now)
		s.Pause()
		if s.State != StateIdle {
			t.Errorf("State = %v, want %v", s.State, StateIdle)
		}
	})

	t.Run("resume recomputes end time", func(t *testing.T) {
		s := NewSession(time.Minute, now)
		s.Run(now)
		s.Observe(30 * time.Second)
		s.Pause()

		later := now.Add(10 * time.Minute)
		s.Run(later)

		if want := later.Add(30 * time.Second); !s.EndsAt.Equal(want) {
			t.Errorf("EndsAt = %v, want %v", s.EndsAt, want)
		}
	})
}

func TestSession_Observe(t *testing.T) {
	s := NewSession(time.Minute, time.Now())

	s.Observe(50 * time.Second)
	if s.Remaining != 50*time.Second {
		t.Errorf("Remaining = %v, want 50s", s.Remaining)
	}

	s.Observe(55 * time.Second)
	if s.Remaining != 50*time.Second {
		t.Errorf("Remaining increased to %v", s.Remaining)
	}

	s.Observe(-time.Second)
	if s.Remaining != 0 {
		t.Errorf("Remaining = %v, want 0", s.Remaining)
	}
}

func TestSession_Reset(t *testing.T) {
	s := NewSession(time.Minute, time.Now())
	s.Run(time.Now())
	s.SetGitContext("main", "abc123")

	s.Reset()

	if s.State != StateStopped {
		t.Errorf("State = %v, want %v", s.State, StateStopped)
	}
	if s.Total != 0 || s.Remaining != 0 {
		t.Errorf("Total/Remaining = %v/%v, want 0/0", s.Total, s.Remaining)
	}
	if s.ID != "" || s.GitBranch != "" {
		t.Error("Reset() should clear identity and git context")
	}
}

func TestSession_Progress(t *testing.T) {
	tests := []struct {
		name      string
		total     time.Duration
		remaining time.Duration
		want      int
	}{
		{"zero total", 0, 0, 0},
		{"untouched", time.Minute, time.Minute, 0},
		{"ten of sixty seconds", time.Minute, 50 * time.Second, 16},
		{"half", time.Minute, 30 * time.Second, 50},
		{"one second left", time.Minute, time.Second, 98},
		{"done", time.Minute, 0, 100},
		{"remaining above total clamps", time.Minute, 2 * time.Minute, 0},
		{"negative remaining clamps", time.Minute, -time.Minute, 100},
		{"long total untouched", 1e8 * time.Second, 1e8 * time.Second, 0},
		{"long total half", 1e8 * time.Second, 5e7 * time.Second, 50},
		{"long total one nanosecond left", 1e8 * time.Second, 1, 99},
		{"long total done", 1e8 * time.Second, 0, 100},
		{"max total half", math.MaxInt64, math.MaxInt64 / 2, 50},
		{"min remaining clamps", time.Minute, math.MinInt64, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{Total: tt.total, Remaining: tt.remaining}
			if got := s.Progress(); got != tt.want {
				t.Errorf("Progress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSession_ProgressIsMonotonic(t *testing.T) {
	s := NewSession(90*time.Second, time.Now())
	last := s.Progress()

	for r := s.Total; r >= 0; r -= time.Second {
		s.Observe(r)
		got := s.Progress()
		if got < last {
			t.Fatalf("Progress() went from %d to %d at remaining %v", last, got, r)
		}
		if r > 0 && got == 100 {
			t.Fatalf("Progress() hit 100 with %v remaining", r)
		}
		last = got
	}

	if last != 100 {
		t.Errorf("final Progress() = %d, want 100", last)
	}
}

func TestSession_ProgressIsMonotonicForLongSessions(t *testing.T) {
	total := 1e8 * time.Second
	s := Session{Total: total, Remaining: total}
	last := s.Progress()

	for step := 1; step <= 1000; step++ {
		s.Remaining = total - total/1000*time.Duration(step)
		got := s.Progress()
		if got < last {
			t.Fatalf("Progress() went from %d to %d at step %d", last, got, step)
		}
		if want := step / 10; got != want {
			t.Fatalf("Progress() at step %d = %d, want %d", step, got, want)
		}
		last = got
	}
}

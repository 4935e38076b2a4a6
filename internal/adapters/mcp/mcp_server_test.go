package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/xvierd/flow-focus/internal/domain"
)

// mockCommander is a mock implementation of ports.FocusCommander for testing.
type mockCommander struct {
	calls       []string
	sessionType domain.SessionType
	duration    time.Duration
	session     domain.Session
	err         error
}

func (m *mockCommander) Start(ctx context.Context, d time.Duration) error {
	return m.StartSession(ctx, domain.TypeFocus, d)
}

func (m *mockCommander) StartSession(ctx context.Context, t domain.SessionType, d time.Duration) error {
	m.calls = append(m.calls, "start")
	m.sessionType = t
	m.duration = d
	return m.err
}

func (m *mockCommander) Pause(ctx context.Context) error {
	m.calls = append(m.calls, "pause")
	return m.err
}

func (m *mockCommander) Resume(ctx context.Context) error {
	m.calls = append(m.calls, "resume")
	return m.err
}

func (m *mockCommander) Stop(ctx context.Context) error {
	m.calls = append(m.calls, "stop")
	return m.err
}

func (m *mockCommander) Snapshot(ctx context.Context) (domain.Session, error) {
	return m.session, m.err
}

// mockHistory is a mock implementation of ports.HistoryProvider for testing.
type mockHistory struct {
	records []domain.SessionRecord
	stats   domain.DailyStats
	limit   int
}

func (m *mockHistory) RecentSessions(ctx context.Context, limit int) ([]domain.SessionRecord, error) {
	m.limit = limit
	if len(m.records) > limit {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func (m *mockHistory) TodayStats(ctx context.Context) (*domain.DailyStats, error) {
	return &m.stats, nil
}

func request(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func decode(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	return out
}

func TestNewServer(t *testing.T) {
	server := NewServer(&mockCommander{}, &mockHistory{}, "test")
	if server == nil || server.server == nil {
		t.Fatal("NewServer() did not create MCP server")
	}
}

func TestServer_handleStart(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		want     time.Duration
		wantType domain.SessionType
		wantErr  bool
	}{
		{"explicit seconds", map[string]interface{}{"duration_seconds": 60.0}, 60000 * time.Millisecond, domain.TypeFocus, false},
		{"fractional seconds", map[string]interface{}{"duration_seconds": 1.5}, 1500 * time.Millisecond, domain.TypeFocus, false},
		{"missing duration", map[string]interface{}{}, 0, domain.TypeFocus, false},
		{"zero duration", map[string]interface{}{"duration_seconds": 0.0}, 0, domain.TypeFocus, false},
		{"negative duration", map[string]interface{}{"duration_seconds": -5.0}, 0, "", true},
		{"short break", map[string]interface{}{"type": "short_break"}, 0, domain.TypeShortBreak, false},
		{"long break with duration", map[string]interface{}{"type": "long_break", "duration_seconds": 600.0}, 10 * time.Minute, domain.TypeLongBreak, false},
		{"unknown type", map[string]interface{}{"type": "nap"}, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := &mockCommander{}
			server := NewServer(mc, nil, "test")

			result, err := server.handleStart(context.Background(), request(tt.args))
			if err != nil {
				t.Fatalf("handleStart() error = %v", err)
			}
			if result.IsError != tt.wantErr {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.wantErr, resultText(t, result))
			}
			if tt.wantErr {
				if len(mc.calls) != 0 {
					t.Errorf("commander should not be called, got %v", mc.calls)
				}
				return
			}
			if mc.duration != tt.want {
				t.Errorf("duration = %v, want %v", mc.duration, tt.want)
			}
			if mc.sessionType != tt.wantType {
				t.Errorf("type = %q, want %q", mc.sessionType, tt.wantType)
			}
			if got := decode(t, result)["ok"]; got != true {
				t.Errorf("ok = %v, want true", got)
			}
		})
	}
}

func TestServer_SimpleCommands(t *testing.T) {
	mc := &mockCommander{}
	server := NewServer(mc, nil, "test")
	ctx := context.Background()

	handlers := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{"pause", server.simpleCommand("pause", mc.Pause)},
		{"resume", server.simpleCommand("resume", mc.Resume)},
		{"stop", server.simpleCommand("stop", mc.Stop)},
	}

	for _, h := range handlers {
		t.Run(h.name, func(t *testing.T) {
			result, err := h.handler(ctx, request(nil))
			if err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if result.IsError {
				t.Errorf("unexpected error result: %s", resultText(t, result))
			}
		})
	}

	if len(mc.calls) != 3 || mc.calls[0] != "pause" || mc.calls[1] != "resume" || mc.calls[2] != "stop" {
		t.Errorf("calls = %v", mc.calls)
	}
}

func TestServer_DeliveryFailure(t *testing.T) {
	mc := &mockCommander{err: domain.ErrServiceNotRunning}
	server := NewServer(mc, nil, "test")

	result, err := server.simpleCommand("stop", mc.Stop)(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !result.IsError {
		t.Error("expected error result when the service is not running")
	}

	result, _ = server.handleStart(context.Background(), request(nil))
	if !result.IsError {
		t.Error("expected error result from start")
	}
}

func TestServer_handleStatus(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	session := domain.NewSession(time.Minute, now)
	session.Run(now)
	session.Observe(50 * time.Second)
	session.SetGitContext("main", "abc1234")

	server := NewServer(&mockCommander{session: session}, nil, "test")
	server.SetLocation(time.UTC)

	result, err := server.handleStatus(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("handleStatus() error = %v", err)
	}

	got := decode(t, result)
	if got["state"] != "running" {
		t.Errorf("state = %v", got["state"])
	}
	if got["remaining_ms"] != 50000.0 || got["total_ms"] != 60000.0 {
		t.Errorf("remaining/total = %v/%v", got["remaining_ms"], got["total_ms"])
	}
	if got["progress"] != 16.0 {
		t.Errorf("progress = %v, want 16", got["progress"])
	}
	if got["ends_at"] != "2024-01-15T10:01:00Z" {
		t.Errorf("ends_at = %v", got["ends_at"])
	}
	if got["display"] != "00:50 remaining • Ends 10:01" {
		t.Errorf("display = %v", got["display"])
	}
	if got["git_branch"] != "main" {
		t.Errorf("git_branch = %v", got["git_branch"])
	}
	if got["type"] != "focus" || got["type_label"] != "Focus" {
		t.Errorf("type = %v/%v", got["type"], got["type_label"])
	}
}

func TestServer_handleStatus_Idle(t *testing.T) {
	server := NewServer(&mockCommander{session: domain.Session{State: domain.StateIdle}}, nil, "test")

	got := decode(t, mustResult(server.handleStatus(context.Background(), request(nil))))
	if got["state"] != "idle" {
		t.Errorf("state = %v", got["state"])
	}
	if _, ok := got["ends_at"]; ok {
		t.Error("idle status should not have an end time")
	}
}

func mustResult(r *mcp.CallToolResult, err error) *mcp.CallToolResult {
	if err != nil {
		panic(err)
	}
	return r
}

func TestServer_handleHistory(t *testing.T) {
	ended := time.Date(2024, 1, 15, 10, 25, 0, 0, time.UTC)
	history := &mockHistory{
		records: []domain.SessionRecord{
			{ID: "a", Outcome: domain.OutcomeCompleted, Total: 25 * time.Minute, EndedAt: ended, GitBranch: "main"},
			{ID: "b", Outcome: domain.OutcomeStopped, Total: 25 * time.Minute, Remaining: 20 * time.Minute, EndedAt: ended},
			{ID: "c", Type: domain.TypeShortBreak, Outcome: domain.OutcomeCompleted, Total: 5 * time.Minute, EndedAt: ended},
		},
		stats: domain.DailyStats{Completed: 1, Stopped: 1, FocusTime: 30 * time.Minute, Breaks: 1},
	}
	server := NewServer(&mockCommander{}, history, "test")

	t.Run("default limit", func(t *testing.T) {
		got := decode(t, mustResult(server.handleHistory(context.Background(), request(nil))))
		if history.limit != defaultHistoryLimit {
			t.Errorf("limit = %d, want %d", history.limit, defaultHistoryLimit)
		}
		if got["total_sessions"] != 3.0 {
			t.Errorf("total_sessions = %v", got["total_sessions"])
		}
		today := got["today"].(map[string]interface{})
		if today["focus_time_ms"] != float64((30 * time.Minute).Milliseconds()) {
			t.Errorf("focus_time_ms = %v", today["focus_time_ms"])
		}
		sessions := got["sessions"].([]interface{})
		second := sessions[1].(map[string]interface{})
		if second["focused_ms"] != float64((5 * time.Minute).Milliseconds()) {
			t.Errorf("focused_ms = %v", second["focused_ms"])
		}
		if third := sessions[2].(map[string]interface{}); third["type"] != "short_break" {
			t.Errorf("type = %v, want short_break", third["type"])
		}
		if today["breaks"] != 1.0 {
			t.Errorf("breaks = %v, want 1", today["breaks"])
		}
	})

	t.Run("explicit limit is capped", func(t *testing.T) {
		_ = mustResult(server.handleHistory(context.Background(), request(map[string]interface{}{"limit": 500.0})))
		if history.limit != maxHistoryLimit {
			t.Errorf("limit = %d, want %d", history.limit, maxHistoryLimit)
		}
	})

	t.Run("no history provider", func(t *testing.T) {
		result := mustResult(NewServer(&mockCommander{}, nil, "test").handleHistory(context.Background(), request(nil)))
		if !result.IsError {
			t.Error("expected an error result without history")
		}
	})
}

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		seconds float64
		want    time.Duration
		wantErr bool
	}{
		{60, time.Minute, false},
		{0, 0, false},
		{0.0004, 0, false},
		{2.5, 2500 * time.Millisecond, false},
		{-1, 0, true},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{1e300, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDurationSeconds(tt.seconds)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrInvalidDuration) {
				t.Errorf("ParseDurationSeconds(%v) error = %v, want ErrInvalidDuration", tt.seconds, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDurationSeconds(%v) = %v, %v; want %v", tt.seconds, got, err, tt.want)
		}
	}
}

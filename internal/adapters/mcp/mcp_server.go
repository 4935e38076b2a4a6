// Package mcp exposes the focus service as MCP (Model Context Protocol)
// tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

const (
	serverName          = "flow-focus"
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
	timestampLayout     = time.RFC3339
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server    *server.MCPServer
	commander ports.FocusCommander
	history   ports.HistoryProvider
	location  *time.Location
}

// NewServer creates a new MCP server instance. history may be nil, in which
// case the history tool reports an error.
func NewServer(commander ports.FocusCommander, history ports.HistoryProvider, version string) *Server {
	s := &Server{
		commander: commander,
		history:   history,
		location:  time.Local,
	}

	s.server = server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// SetLocation sets the zone used for end times in status output.
func (s *Server) SetLocation(loc *time.Location) {
	if loc != nil {
		s.location = loc
	}
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"start_focus",
			mcp.WithDescription("Start a focus session or a break, or continue a paused session. Does nothing while a session is running."),
			mcp.WithNumber(
				"duration_seconds",
				mcp.Description("Session length in seconds (default: 1500 for focus, 300 for a short break, 900 for a long break). Ignored when resuming."),
				mcp.Min(0),
			),
			mcp.WithString(
				"type",
				mcp.Description("Session type (default: focus)"),
				mcp.Enum(string(domain.TypeFocus), string(domain.TypeShortBreak), string(domain.TypeLongBreak)),
			),
		),
		s.handleStart,
	)

	s.server.AddTool(
		mcp.NewTool(
			"pause_focus",
			mcp.WithDescription("Pause the running focus session"),
		),
		s.simpleCommand("pause", s.commander.Pause),
	)

	s.server.AddTool(
		mcp.NewTool(
			"resume_focus",
			mcp.WithDescription("Resume a paused focus session"),
		),
		s.simpleCommand("resume", s.commander.Resume),
	)

	s.server.AddTool(
		mcp.NewTool(
			"stop_focus",
			mcp.WithDescription("End the focus session and remove its display"),
		),
		s.simpleCommand("stop", s.commander.Stop),
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_focus_status",
			mcp.WithDescription("Get the current focus session: state, remaining time, progress and end time"),
		),
		s.handleStatus,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_focus_history",
			mcp.WithDescription("Get recently ended focus sessions and today's totals"),
			mcp.WithNumber(
				"limit",
				mcp.Description(fmt.Sprintf("Maximum number of sessions to return (default: %d)", defaultHistoryLimit)),
				mcp.Min(1),
				mcp.Max(maxHistoryLimit),
			),
		),
		s.handleHistory,
	)
}

// Serve answers MCP requests read from in until ctx is cancelled or in is
// closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.server).Listen(ctx, in, out)
}

// ParseDurationSeconds converts a tool argument in seconds to a
// duration, rounded to the millisecond. Zero selects the default length.
func ParseDurationSeconds(seconds float64) (time.Duration, error) {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: %v seconds", domain.ErrInvalidDuration, seconds)
	}
	ms := math.Round(seconds * 1000)
	if ms > float64(math.MaxInt64/int64(time.Millisecond)) {
		return 0, fmt.Errorf("%w: %v seconds", domain.ErrInvalidDuration, seconds)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	duration, err := ParseDurationSeconds(request.GetFloat("duration_seconds", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionType, err := domain.ParseSessionType(request.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.commander.StartSession(ctx, sessionType, duration); err != nil {
		return mcp.NewToolResultErrorFromErr("start failed", err), nil
	}
	return okResult(), nil
}

func (s *Server) simpleCommand(name string, fn func(context.Context) error) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := fn(ctx); err != nil {
			return mcp.NewToolResultErrorFromErr(name+" failed", err), nil
		}
		return okResult(), nil
	}
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.commander.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("status unavailable", err), nil
	}

	content := domain.Render(session, s.location)
	result := map[string]interface{}{
		"state":        string(session.State),
		"state_label":  domain.GetStateLabel(session.State),
		"total_ms":     session.Total.Milliseconds(),
		"remaining_ms": session.Remaining.Milliseconds(),
		"progress":     content.ProgressPercent,
		"display":      content.Body,
	}
	if session.HasEndTime() {
		result["ends_at"] = session.EndsAt.In(s.location).Format(timestampLayout)
	}
	if session.ID != "" {
		result["session_id"] = session.ID
		result["type"] = string(session.Type)
		result["type_label"] = domain.GetSessionTypeLabel(session.Type)
	}
	if session.GitBranch != "" {
		result["git_branch"] = session.GitBranch
		result["git_commit"] = session.GitCommit
	}

	return jsonResult(result)
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return mcp.NewToolResultError("session history is not available"), nil
	}

	limit := request.GetInt("limit", defaultHistoryLimit)
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.history.RecentSessions(ctx, limit)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to load history", err), nil
	}
	stats, err := s.history.TodayStats(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to load today's stats", err), nil
	}

	sessions := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		entry := map[string]interface{}{
			"id":         r.ID,
			"type":       string(r.Type),
			"outcome":    string(r.Outcome),
			"total_ms":   r.Total.Milliseconds(),
			"focused_ms": r.Focused().Milliseconds(),
			"started_at": r.StartedAt.In(s.location).Format(timestampLayout),
			"ended_at":   r.EndedAt.In(s.location).Format(timestampLayout),
		}
		if r.GitBranch != "" {
			entry["git_branch"] = r.GitBranch
			entry["git_commit"] = r.GitCommit
		}
		sessions = append(sessions, entry)
	}

	return jsonResult(map[string]interface{}{
		"sessions":       sessions,
		"total_sessions": len(sessions),
		"today": map[string]interface{}{
			"completed":     stats.Completed,
			"stopped":       stats.Stopped,
			"focus_time_ms": stats.FocusTime.Milliseconds(),
			"breaks":        stats.Breaks,
		},
	})
}

func okResult() *mcp.CallToolResult {
	return mcp.NewToolResultText(`{"ok": true}`)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

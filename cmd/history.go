package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/xvierd/flow-focus/internal/domain"
)

var (
	historyLimit  int
	historyBranch string
	jsonOutput    bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded focus sessions",
	Long: `List the most recent focus sessions and today's totals.

Use --branch to fuzzy-match sessions by the git branch they were started on.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			records []domain.SessionRecord
			err     error
		)
		if historyBranch != "" {
			records, err = app.history.SessionsOnBranch(ctx, historyBranch, historyLimit)
		} else {
			records, err = app.history.RecentSessions(ctx, historyLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		stats, err := app.history.TodayStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to load today's stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputHistoryJSON(out, records, stats)
		}
		printHistory(out, records)
		fmt.Fprintln(out)
		fmt.Fprintln(out, formatStats(stats))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of sessions to show")
	historyCmd.Flags().StringVarP(&historyBranch, "branch", "b", "", "Fuzzy filter by git branch")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
}

func printHistory(w io.Writer, records []domain.SessionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return
	}

	fmt.Fprintf(w, "Sessions (%d):\n\n", len(records))
	for _, r := range records {
		line := fmt.Sprintf("%s %s  %s of %s",
			getOutcomeIcon(r.Outcome),
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			formatMinutes(r.Focused()),
			formatMinutes(r.Total))
		if r.IsBreak() {
			line += "  " + domain.GetSessionTypeLabel(r.Type)
		}
		if r.GitBranch != "" {
			line += fmt.Sprintf("  [%s@%s]", r.GitBranch, r.GitCommit)
		}
		fmt.Fprintln(w, line)
	}
}

func outputHistoryJSON(w io.Writer, records []domain.SessionRecord, stats *domain.DailyStats) error {
	sessions := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		sessions = append(sessions, map[string]interface{}{
			"id":         r.ID,
			"type":       string(r.Type),
			"outcome":    string(r.Outcome),
			"total_ms":   r.Total.Milliseconds(),
			"focused_ms": r.Focused().Milliseconds(),
			"started_at": r.StartedAt.Format(time.RFC3339),
			"ended_at":   r.EndedAt.Format(time.RFC3339),
			"git_branch": r.GitBranch,
			"git_commit": r.GitCommit,
		})
	}
	data := map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
		"today": map[string]interface{}{
			"completed":     stats.Completed,
			"stopped":       stats.Stopped,
			"focus_time_ms": stats.FocusTime.Milliseconds(),
			"breaks":        stats.Breaks,
		},
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	fmt.Fprintln(w, string(jsonData))
	return nil
}

func getOutcomeIcon(outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomeCompleted:
		return "✅"
	case domain.OutcomeStopped:
		return "⏹"
	default:
		return "❓"
	}
}

// formatStats summarizes a day of history on one line.
func formatStats(stats *domain.DailyStats) string {
	line := fmt.Sprintf("Today: %d completed, %d stopped, %s focused",
		stats.Completed, stats.Stopped, formatMinutes(stats.FocusTime))
	switch stats.Breaks {
	case 0:
	case 1:
		line += ", 1 break"
	default:
		line += fmt.Sprintf(", %d breaks", stats.Breaks)
	}
	return line
}

// formatMinutes formats a duration as a human-friendly string like "25m" or "1h30m".
func formatMinutes(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d >= time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

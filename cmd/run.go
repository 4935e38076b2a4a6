package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xvierd/flow-focus/internal/adapters/tui"
	"github.com/xvierd/flow-focus/internal/domain"
)

var (
	runDuration time.Duration
	runType     string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a focus session in the terminal",
	Long: `Start a focus session or a break and show the countdown dashboard.

Keys: p or space pauses and resumes, e ends the session, q quits.
With no session running, s starts a focus session, b a short break and
l a long break.
Quitting with a live session stops it and records it in the history.`,
	Args: cobra.NoArgs,
	RunE: runFocus,
}

func init() {
	runCmd.Flags().DurationVarP(&runDuration, "duration", "d", 0, "Session length, e.g. 25m or 90s (default: from config)")
	runCmd.Flags().StringVarP(&runType, "type", "t", string(domain.TypeFocus), "Session type: focus, short_break or long_break")
}

func runFocus(cmd *cobra.Command, args []string) error {
	if runDuration < 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDuration, runDuration)
	}
	sessionType, err := domain.ParseSessionType(runType)
	if err != nil {
		return err
	}
	if err := redirectLogs(); err != nil {
		return err
	}

	ctx, stop := setupSignalHandler(cmd.Context())
	defer stop()

	svc := newFocusService(nil)
	dashboard := tui.NewDisplay(tui.NewModel(svc).WithAutoStart(sessionType, runDuration), tea.WithAltScreen())
	svc.SetDisplay(dashboard)

	serviceCtx, stopService := context.WithCancel(ctx)
	defer stopService()

	var g errgroup.Group
	g.Go(func() error {
		return svc.Run(serviceCtx)
	})
	g.Go(func() error {
		// Leaving the dashboard shuts the service down.
		defer stopService()
		return dashboard.Run(ctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	stats, err := app.history.TodayStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load today's stats: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatStats(stats))
	return nil
}

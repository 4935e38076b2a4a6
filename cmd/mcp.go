package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xvierd/flow-focus/internal/adapters/display"
	"github.com/xvierd/flow-focus/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server communicates over stdio and provides tools to start, pause, resume
and stop a focus session, and to query its status and history.

The persistent display is reported as log lines on stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := setupSignalHandler(cmd.Context())
		defer stop()

		svc := newFocusService(display.NewLogger(app.logger, slog.LevelInfo))
		server := mcp.NewServer(svc, app.history, Version)

		serviceCtx, stopService := context.WithCancel(ctx)
		defer stopService()

		app.logger.Info("starting MCP server on stdio", slog.String("version", Version))

		var g errgroup.Group
		g.Go(func() error {
			return svc.Run(serviceCtx)
		})
		g.Go(func() error {
			defer stopService()
			err := server.Serve(ctx, os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		})
		return g.Wait()
	},
}

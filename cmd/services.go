package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/xvierd/flow-focus/internal/adapters/clock"
	"github.com/xvierd/flow-focus/internal/adapters/git"
	"github.com/xvierd/flow-focus/internal/adapters/metrics"
	"github.com/xvierd/flow-focus/internal/adapters/notification"
	"github.com/xvierd/flow-focus/internal/adapters/storage"
	"github.com/xvierd/flow-focus/internal/config"
	"github.com/xvierd/flow-focus/internal/ports"
	"github.com/xvierd/flow-focus/internal/services"
)

// shutdownTimeout bounds flushing metrics on exit.
const shutdownTimeout = 5 * time.Second

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config   *config.Config
	logger   *slog.Logger
	logFile  *os.File
	clock    ports.Clock
	storage  ports.Storage
	history  *services.HistoryService
	notifier *notification.Notifier
	metrics  ports.Metrics
	git      ports.GitDetector
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices(ctx context.Context) error {
	// Load configuration
	var err error
	app.config, err = config.Load()
	if err != nil {
		// If config loading fails, use defaults
		app.config = config.DefaultConfig()
	}
	if logLevel != "" {
		app.config.Log.Level = logLevel
	}
	app.logger = newLogger(os.Stderr, app.config.Log)
	if err != nil {
		app.logger.Warn("using default configuration", slog.String("error", err.Error()))
	}

	// Determine database path
	if dbPath == "" {
		dbPath = config.GetDBPath(app.config)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// Initialize storage
	app.storage, err = storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.clock = clock.System{}
	app.git = git.NewDetector()
	app.notifier = notification.New(&app.config.Notifications)

	app.history = services.NewHistoryService(app.storage, app.clock)
	app.history.SetLogger(app.logger)

	app.metrics, err = metrics.New(ctx, app.config.Metrics, Version)
	if err != nil {
		app.logger.Warn("metrics export disabled", slog.String("error", err.Error()))
		app.metrics = metrics.Nop{}
	}

	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	var errs []error
	if app.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, app.metrics.Close(ctx))
		cancel()
	}
	if app.storage != nil {
		errs = append(errs, app.storage.Close())
	}
	if app.logFile != nil {
		errs = append(errs, app.logFile.Close())
	}
	app = appDeps{}
	return errors.Join(errs...)
}

// newLogger creates the text logger used by every component.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// redirectLogs sends logs to the data directory log file so they do not
// corrupt a full-screen dashboard.
func redirectLogs() error {
	path := filepath.Join(filepath.Dir(dbPath), "focus.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	app.logFile = f
	app.logger = newLogger(f, app.config.Log)
	app.history.SetLogger(app.logger)
	return nil
}

// newFocusService wires the focus service to the shared adapters.
func newFocusService(display ports.DisplayHost) *services.FocusService {
	svc := services.NewFocusService(app.clock, display)
	svc.SetConfig(services.FocusConfig{
		DefaultDuration: time.Duration(app.config.Focus.DefaultDuration),
		ShortBreak:      time.Duration(app.config.Focus.ShortBreak),
		LongBreak:       time.Duration(app.config.Focus.LongBreak),
		DisplayTimeout:  time.Duration(app.config.Focus.DisplayTimeout),
		Location:        time.Local,
	})
	svc.SetLogger(app.logger)
	svc.SetMetrics(app.metrics)

	workingDir, err := os.Getwd()
	if err == nil {
		svc.SetGitDetector(app.git, workingDir)
	}

	svc.AddListener(app.history)
	svc.AddListener(app.notifier)
	return svc
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

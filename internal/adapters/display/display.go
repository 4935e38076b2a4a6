// Package display provides persistent display hosts that need no terminal:
// a structured-log host for headless runs and a fan-out over several hosts.
package display

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

// Logger reports the persistent display as log lines. Consecutive updates
// with the same body are logged once.
type Logger struct {
	logger *slog.Logger
	level  slog.Level

	mu       sync.Mutex
	active   bool
	lastBody string
}

// Ensure Logger implements ports.DisplayHost.
var _ ports.DisplayHost = (*Logger)(nil)

// NewLogger creates a display host writing to logger at level.
func NewLogger(logger *slog.Logger, level slog.Level) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, level: level}
}

// Begin logs the display being shown. It is idempotent while active.
func (l *Logger) Begin(ctx context.Context, content domain.Content) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active {
		return l.update(ctx, content)
	}
	l.active = true
	l.lastBody = content.Body
	l.logger.Log(ctx, l.level, "focus display shown", contentAttrs(content)...)
	return nil
}

// Update logs changed display content.
func (l *Logger) Update(ctx context.Context, content domain.Content) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.update(ctx, content)
}

func (l *Logger) update(ctx context.Context, content domain.Content) error {
	if content.Body == l.lastBody {
		return nil
	}
	l.lastBody = content.Body
	l.logger.Log(ctx, l.level, "focus display updated", contentAttrs(content)...)
	return nil
}

// End logs the display being removed. Ending an inactive display is a no-op.
func (l *Logger) End(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active {
		return nil
	}
	l.active = false
	l.lastBody = ""
	l.logger.Log(ctx, l.level, "focus display removed")
	return nil
}

func contentAttrs(c domain.Content) []any {
	return []any{
		slog.String("state", string(c.State)),
		slog.String("type", string(c.Type)),
		slog.String("body", c.Body),
		slog.Int("progress", c.ProgressPercent),
		slog.String("primary", c.PrimaryAction),
	}
}

// Multi fans every call out to all hosts. A failing host does not keep
// the others from being called; the errors are joined.
type Multi struct {
	hosts []ports.DisplayHost
}

// Ensure Multi implements ports.DisplayHost.
var _ ports.DisplayHost = (*Multi)(nil)

// NewMulti creates a fan-out over hosts, skipping nil entries.
func NewMulti(hosts ...ports.DisplayHost) *Multi {
	m := &Multi{}
	for _, h := range hosts {
		if h != nil {
			m.hosts = append(m.hosts, h)
		}
	}
	return m
}

// Begin calls Begin on every host.
func (m *Multi) Begin(ctx context.Context, content domain.Content) error {
	return m.each(func(h ports.DisplayHost) error { return h.Begin(ctx, content) })
}

// Update calls Update on every host.
func (m *Multi) Update(ctx context.Context, content domain.Content) error {
	return m.each(func(h ports.DisplayHost) error { return h.Update(ctx, content) })
}

// End calls End on every host.
func (m *Multi) End(ctx context.Context) error {
	return m.each(func(h ports.DisplayHost) error { return h.End(ctx) })
}

func (m *Multi) each(fn func(ports.DisplayHost) error) error {
	var errs []error
	for _, h := range m.hosts {
		if err := fn(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package notification provides desktop notifications for ended sessions.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/xvierd/flow-focus/internal/config"
	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

// Notifier alerts the user when a focus session runs to completion.
type Notifier struct {
	cfg    *config.NotificationConfig
	notify func(title, message string) error
}

// Ensure Notifier implements ports.SessionListener.
var _ ports.SessionListener = (*Notifier)(nil)

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{cfg: cfg, notify: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	return n.notify(title, message)
}

// SessionEnded alerts on completed sessions. Stopped sessions were ended by
// the user and are not announced.
func (n *Notifier) SessionEnded(ctx context.Context, record domain.SessionRecord) error {
	if !record.IsCompleted() {
		return nil
	}
	if record.IsBreak() {
		return n.Notify("Break Over!", fmt.Sprintf("Your %s is done. Time to get back to focus.",
			strings.ToLower(domain.GetSessionTypeLabel(record.Type))))
	}
	message := fmt.Sprintf("You stayed focused for %s.", formatFocused(record.Focused()))
	if record.GitBranch != "" {
		message += fmt.Sprintf(" Branch: %s", record.GitBranch)
	}
	return n.Notify("Session Complete!", message)
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}

func formatFocused(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

package tui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

// sender is the part of *tea.Program the display needs.
type sender interface {
	Send(msg tea.Msg)
}

// Display implements ports.DisplayHost by pushing content into a running
// Bubble Tea program.
type Display struct {
	program *tea.Program
	sender  sender
	seq     atomic.Uint64
}

// Ensure Display implements ports.DisplayHost.
var _ ports.DisplayHost = (*Display)(nil)

// NewDisplay creates the dashboard program for model.
func NewDisplay(model Model, opts ...tea.ProgramOption) *Display {
	p := tea.NewProgram(model, opts...)
	return &Display{program: p, sender: p}
}

// Run runs the dashboard until the user quits or ctx is cancelled.
func (d *Display) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		d.program.Quit()
	}()

	if _, err := d.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Begin shows the dashboard for a session.
func (d *Display) Begin(ctx context.Context, content domain.Content) error {
	return d.send(ctx, beginMsg{seq: d.seq.Add(1), content: content})
}

// Update refreshes the dashboard.
func (d *Display) Update(ctx context.Context, content domain.Content) error {
	return d.send(ctx, updateMsg{seq: d.seq.Add(1), content: content})
}

// End clears the dashboard.
func (d *Display) End(ctx context.Context) error {
	return d.send(ctx, endMsg{seq: d.seq.Add(1)})
}

// send hands msg to the program without blocking past ctx. Send itself
// returns once the program has exited.
func (d *Display) send(ctx context.Context, msg tea.Msg) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.sender.Send(msg)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

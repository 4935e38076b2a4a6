package metrics

import (
	"context"

	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

// Nop is a metrics recorder that does nothing.
type Nop struct{}

// Ensure Nop implements ports.Metrics.
var _ ports.Metrics = Nop{}

func (Nop) CommandApplied(ctx context.Context, command string, changed bool) {}

func (Nop) TickObserved(ctx context.Context) {}

func (Nop) DisplayFailed(ctx context.Context, op string) {}

func (Nop) SessionEnded(ctx context.Context, record domain.SessionRecord) {}

func (Nop) Close(ctx context.Context) error {
	return nil
}

package services

import (
	"context"
	"sync"
	"time"

	"github.com/xvierd/flow-focus/internal/ports"
)

// TickScheduler counts a horizon down in fixed periods on its own goroutine.
//
// onTick receives the remaining time at each period boundary; onFinish is
// called once the horizon is exhausted, after which the scheduler exits.
// A horizon that is not a whole number of periods ends with one shorter
// step, so onFinish fires at the horizon itself.
// Both callbacks get a context that is cancelled by Cancel and must give up
// any blocking hand-off when it is done.
type TickScheduler struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartTickScheduler starts counting horizon down from the clock's current
// instant.
func StartTickScheduler(
	clock ports.Clock,
	horizon, period time.Duration,
	onTick func(ctx context.Context, remaining time.Duration),
	onFinish func(ctx context.Context),
) *TickScheduler {
	if period <= 0 {
		period = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &TickScheduler{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	start := clock.Now()
	step, final := period, false
	if horizon > 0 && horizon < period {
		step, final = horizon, true
	}
	ticker := clock.NewTicker(step)
	go s.run(ctx, clock, ticker, final, start, horizon, period, onTick, onFinish)
	return s
}

// Cancel stops the scheduler and waits for its goroutine to exit. No callback
// is invoked after Cancel returns. Cancel is idempotent and must not be called
// from inside a callback.
func (s *TickScheduler) Cancel() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed once the scheduler goroutine has exited.
func (s *TickScheduler) Done() <-chan struct{} {
	return s.done
}

func (s *TickScheduler) run(
	ctx context.Context,
	clock ports.Clock,
	ticker ports.Ticker,
	final bool,
	start time.Time,
	horizon, period time.Duration,
	onTick func(context.Context, time.Duration),
	onFinish func(context.Context),
) {
	defer close(s.done)
	defer func() { ticker.Stop() }()

	if horizon <= 0 {
		onFinish(ctx)
		return
	}

	var lastPeriod time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			if final {
				onFinish(ctx)
				return
			}

			// Round to the nearest boundary so ticker jitter never shifts
			// the reported seconds.
			elapsed := (now.Sub(start) + period/2) / period
			if elapsed <= lastPeriod {
				continue
			}
			lastPeriod = elapsed

			remaining := horizon - elapsed*period
			if remaining <= 0 {
				onFinish(ctx)
				return
			}
			if remaining < period {
				// Arm the short last step before reporting the tick.
				last := start.Add(horizon).Sub(clock.Now())
				if last <= 0 {
					onTick(ctx, remaining)
					if ctx.Err() == nil {
						onFinish(ctx)
					}
					return
				}
				ticker.Stop()
				ticker = clock.NewTicker(last)
				final = true
			}
			onTick(ctx, remaining)
		}
	}
}

package ports

import "time"

// Clock supplies wall-clock time and tickers.
// This is a driven port (implemented by adapters).
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// NewTicker returns a ticker firing every d.
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	// C returns the channel on which ticks are delivered.
	C() <-chan time.Time

	// Stop turns off the ticker. No more ticks are sent after Stop returns.
	Stop()
}

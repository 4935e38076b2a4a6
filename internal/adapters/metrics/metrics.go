// Package metrics records focus service activity with OpenTelemetry,
// exported over OTLP/gRPC when enabled.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

const meterName = "github.com/xvierd/flow-focus"

// Recorder implements ports.Metrics on an OpenTelemetry meter.
type Recorder struct {
	shutdown func(context.Context) error

	commands        metric.Int64Counter
	ticks           metric.Int64Counter
	displayFailures metric.Int64Counter
	sessions        metric.Int64Counter
	focused         metric.Float64Histogram
}

// Ensure Recorder implements ports.Metrics.
var _ ports.Metrics = (*Recorder)(nil)

// NewRecorder creates the focus instruments on provider.
func NewRecorder(provider metric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(meterName)

	commands, err := meter.Int64Counter(
		"focus_commands_total",
		metric.WithDescription("Focus commands applied, by command and whether the state changed"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating commands counter: %w", err)
	}

	ticks, err := meter.Int64Counter(
		"focus_ticks_total",
		metric.WithDescription("Countdown ticks applied to a running session"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	displayFailures, err := meter.Int64Counter(
		"focus_display_failures_total",
		metric.WithDescription("Display host calls that returned an error"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating display failures counter: %w", err)
	}

	sessions, err := meter.Int64Counter(
		"focus_sessions_total",
		metric.WithDescription("Ended focus sessions, by outcome"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	focused, err := meter.Float64Histogram(
		"focus_session_focused_seconds",
		metric.WithDescription("Time counted down per ended session"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating focused histogram: %w", err)
	}

	return &Recorder{
		commands:        commands,
		ticks:           ticks,
		displayFailures: displayFailures,
		sessions:        sessions,
		focused:         focused,
	}, nil
}

// CommandApplied implements ports.Metrics.
func (r *Recorder) CommandApplied(ctx context.Context, command string, changed bool) {
	r.commands.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.Bool("changed", changed),
	))
}

// TickObserved implements ports.Metrics.
func (r *Recorder) TickObserved(ctx context.Context) {
	r.ticks.Add(ctx, 1)
}

// DisplayFailed implements ports.Metrics.
func (r *Recorder) DisplayFailed(ctx context.Context, op string) {
	r.displayFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// SessionEnded implements ports.Metrics.
func (r *Recorder) SessionEnded(ctx context.Context, record domain.SessionRecord) {
	sessionType := record.Type
	if sessionType == "" {
		sessionType = domain.TypeFocus
	}
	opt := metric.WithAttributes(
		attribute.String("type", string(sessionType)),
		attribute.String("outcome", string(record.Outcome)),
	)
	r.sessions.Add(ctx, 1, opt)
	r.focused.Record(ctx, record.Focused().Seconds(), opt)
}

// Close flushes pending metrics and shuts down the provider it owns, if any.
func (r *Recorder) Close(ctx context.Context) error {
	if r.shutdown == nil {
		return nil
	}
	return r.shutdown(ctx)
}

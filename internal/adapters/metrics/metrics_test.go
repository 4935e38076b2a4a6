package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/xvierd/flow-focus/internal/config"
	"github.com/xvierd/flow-focus/internal/domain"
)

func newTestRecorder(t *testing.T) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	r, err := NewRecorder(provider)
	require.NoError(t, err)
	return r, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumWith(t *testing.T, m metricdata.Metrics, kv ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	want := attribute.NewSet(kv...)
	var total int64
	for _, dp := range sum.DataPoints {
		if len(kv) == 0 || dp.Attributes.Equals(&want) {
			total += dp.Value
		}
	}
	return total
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	r, reader := newTestRecorder(t)

	r.CommandApplied(ctx, "start", true)
	r.CommandApplied(ctx, "start", false)
	r.CommandApplied(ctx, "pause", true)
	r.TickObserved(ctx)
	r.TickObserved(ctx)
	r.TickObserved(ctx)
	r.DisplayFailed(ctx, "begin")
	r.SessionEnded(ctx, domain.SessionRecord{
		Outcome:   domain.OutcomeCompleted,
		Total:     25 * time.Minute,
		Remaining: 0,
	})
	r.SessionEnded(ctx, domain.SessionRecord{
		Type:      domain.TypeFocus,
		Outcome:   domain.OutcomeStopped,
		Total:     25 * time.Minute,
		Remaining: 20 * time.Minute,
	})
	r.SessionEnded(ctx, domain.SessionRecord{
		Type:      domain.TypeShortBreak,
		Outcome:   domain.OutcomeCompleted,
		Total:     5 * time.Minute,
		Remaining: 0,
	})

	got := collect(t, reader)

	commands := got["focus_commands_total"]
	assert.Equal(t, int64(3), sumWith(t, commands))
	assert.Equal(t, int64(1), sumWith(t, commands,
		attribute.String("command", "start"), attribute.Bool("changed", false)))

	assert.Equal(t, int64(3), sumWith(t, got["focus_ticks_total"]))
	assert.Equal(t, int64(1), sumWith(t, got["focus_display_failures_total"], attribute.String("op", "begin")))

	sessions := got["focus_sessions_total"]
	assert.Equal(t, int64(3), sumWith(t, sessions))
	assert.Equal(t, int64(1), sumWith(t, sessions,
		attribute.String("type", "focus"), attribute.String("outcome", "completed")))
	assert.Equal(t, int64(1), sumWith(t, sessions,
		attribute.String("type", "focus"), attribute.String("outcome", "stopped")))
	assert.Equal(t, int64(1), sumWith(t, sessions,
		attribute.String("type", "short_break"), attribute.String("outcome", "completed")))

	hist, ok := got["focus_session_focused_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var total float64
	for _, dp := range hist.DataPoints {
		total += dp.Sum
	}
	assert.InDelta(t, (35 * time.Minute).Seconds(), total, 0.001)

	assert.NoError(t, r.Close(ctx))
}

func TestNew_DisabledFallsBackToNop(t *testing.T) {
	m, err := New(context.Background(), config.MetricsConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, m)

	m, err = New(context.Background(), config.MetricsConfig{Enabled: true}, "test")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, m, "an empty endpoint disables export")
}

func TestNewOTLP_Disabled(t *testing.T) {
	_, err := NewOTLP(context.Background(), config.MetricsConfig{}, "test")
	assert.ErrorIs(t, err, ErrDisabled)
}

type shutdownExporter struct {
	sdkmetric.Exporter
	shutdowns int
}

func (e *shutdownExporter) Shutdown(ctx context.Context) error {
	e.shutdowns++
	return nil
}

func TestNewOTLP_ResourceFailureShutsDownExporter(t *testing.T) {
	exp := &shutdownExporter{}
	origExporter, origResource := newExporter, newResource
	t.Cleanup(func() { newExporter, newResource = origExporter, origResource })

	newExporter = func(ctx context.Context, opts ...otlpmetricgrpc.Option) (sdkmetric.Exporter, error) {
		return exp, nil
	}
	newResource = func(ctx context.Context, opts ...resource.Option) (*resource.Resource, error) {
		return nil, errors.New("detector failed")
	}

	_, err := NewOTLP(context.Background(), config.MetricsConfig{
		Enabled:  true,
		Endpoint: "localhost:4317",
		Insecure: true,
	}, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating resource")
	assert.Equal(t, 1, exp.shutdowns)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var n Nop
	n.CommandApplied(ctx, "start", true)
	n.TickObserved(ctx)
	n.DisplayFailed(ctx, "update")
	n.SessionEnded(ctx, domain.SessionRecord{})
	assert.NoError(t, n.Close(ctx))
}

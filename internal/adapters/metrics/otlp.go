package metrics

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/xvierd/flow-focus/internal/config"
	"github.com/xvierd/flow-focus/internal/ports"
)

const serviceName = "focus"

// ErrDisabled is returned by NewOTLP when metrics export is not configured.
var ErrDisabled = errors.New("metrics export disabled or endpoint not configured")

// Constructors for the export pipeline, replaced in tests.
var (
	newExporter = func(ctx context.Context, opts ...otlpmetricgrpc.Option) (sdkmetric.Exporter, error) {
		return otlpmetricgrpc.New(ctx, opts...)
	}
	newResource = resource.New
)

// NewOTLP creates a recorder that periodically exports to an OTLP collector.
func NewOTLP(ctx context.Context, cfg config.MetricsConfig, version string) (*Recorder, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, ErrDisabled
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure(),
		)
	}

	exp, err := newExporter(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := newResource(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating resource: %w", err), exp.Shutdown(ctx))
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	recorder, err := NewRecorder(provider)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	recorder.shutdown = provider.Shutdown
	return recorder, nil
}

// New returns the OTLP recorder when metrics are enabled and a no-op
// recorder otherwise.
func New(ctx context.Context, cfg config.MetricsConfig, version string) (ports.Metrics, error) {
	recorder, err := NewOTLP(ctx, cfg, version)
	if errors.Is(err, ErrDisabled) {
		return Nop{}, nil
	}
	if err != nil {
		return nil, err
	}
	return recorder, nil
}

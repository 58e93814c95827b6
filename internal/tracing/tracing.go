// Package tracing sets up OpenTelemetry tracing and span helpers.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config holds the tracing settings.
type Config struct {
	Enabled      bool
	ServiceName  string
	Version      string
	Environment  string
	Endpoint     string  // OTLP/HTTP host:port
	SamplingRate float64 // 0..1
	Insecure     bool
}

// Provider owns the tracer provider. A disabled Provider is a no-op.
type Provider struct {
	tp     *sdktrace.TracerProvider
	config Config
}

// NewProvider creates the tracer provider and installs it globally.
func NewProvider(cfg Config, logger *zap.Logger) (*Provider, error) {
	if !cfg.Enabled {
		logger.Info("Tracing disabled")
		return &Provider{config: cfg}, nil
	}
	if cfg.ServiceName == "" {
		return nil, fmt.Errorf("service name is required")
	}
	if cfg.SamplingRate < 0 || cfg.SamplingRate > 1 {
		return nil, fmt.Errorf("sampling rate must be between 0 and 1, got %f", cfg.SamplingRate)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.Version),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := newHTTPExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	tp := newTracerProvider(res, sampler(cfg.SamplingRate), sdktrace.WithBatcher(exporter,
		sdktrace.WithBatchTimeout(5*time.Second),
		sdktrace.WithMaxExportBatchSize(512),
	))
	install(tp)

	logger.Info("Tracing initialized",
		zap.String("service", cfg.ServiceName),
		zap.String("endpoint", cfg.Endpoint),
		zap.Float64("sampling_rate", cfg.SamplingRate),
	)
	return &Provider{tp: tp, config: cfg}, nil
}

func newTracerProvider(res *resource.Resource, s sdktrace.Sampler, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append(opts, sdktrace.WithResource(res), sdktrace.WithSampler(s))
	return sdktrace.NewTracerProvider(opts...)
}

func install(tp trace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

func sampler(rate float64) sdktrace.Sampler {
	switch rate {
	case 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

func newHTTPExporter(cfg Config) (sdktrace.SpanExporter, error) {
	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp http exporter: %w", err)
	}
	return exp, nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool { return p.tp != nil }

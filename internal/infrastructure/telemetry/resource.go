package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported on every exported signal. Overridden at link time.
var ServiceVersion = "dev"

// Config holds the OTLP settings shared by traces, metrics and logs
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Environment       string
	Insecure          bool
}

func newResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
			attribute.String("deployment.environment.name", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

const shutdownTimeout = 10 * time.Second

// pipeline is the state every OTLP signal provider shares. stop is nil while
// the signal is disabled.
type pipeline struct {
	signal string
	config Config
	logger *zap.Logger
	stop   func(context.Context) error
}

func newPipeline(signal string, cfg Config, logger *zap.Logger) pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return pipeline{signal: signal, config: cfg, logger: logger}
}

// IsEnabled reports whether the signal is exported
func (p *pipeline) IsEnabled() bool {
	return p.config.Enabled && p.stop != nil
}

// Shutdown flushes pending records and stops the exporter
func (p *pipeline) Shutdown(ctx context.Context) error {
	if p.stop == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := p.stop(ctx); err != nil {
		p.logger.Error("Telemetry pipeline shutdown failed", zap.String("signal", p.signal), zap.Error(err))
		return fmt.Errorf("shutdown %s pipeline: %w", p.signal, err)
	}
	p.logger.Info("Telemetry pipeline stopped", zap.String("signal", p.signal))
	return nil
}

func (p *pipeline) started(stop func(context.Context) error, fields ...zap.Field) {
	p.stop = stop
	p.logger.Info("Telemetry pipeline started", append([]zap.Field{
		zap.String("signal", p.signal),
		zap.String("collector_endpoint", p.config.CollectorEndpoint),
	}, fields...)...)
}

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const defaultMetricsInterval = time.Minute

// MeterProvider owns the metric pipeline. Disabled, Meter falls back to the
// global no-op provider.
type MeterProvider struct {
	pipeline
	provider *sdkmetric.MeterProvider
}

// NewMeterProvider pushes metrics over OTLP gRPC every interval
func NewMeterProvider(ctx context.Context, cfg Config, interval time.Duration, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{pipeline: newPipeline("metrics", cfg, logger)}
	if !cfg.Enabled {
		mp.logger.Info("Metric export disabled")
		return mp, nil
	}
	if interval <= 0 {
		interval = defaultMetricsInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}
	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))
	mp.provider = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp.provider)
	mp.started(mp.provider.Shutdown, zap.Duration("export_interval", interval))
	return mp, nil
}

// Meter returns a named meter
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// Instruments creates instruments on one meter and keeps the first creation
// error, so a constructor checks Err once after declaring everything.
type Instruments struct {
	meter metric.Meter
	err   error
}

// NewInstruments starts an instrument batch on meter
func NewInstruments(meter metric.Meter) *Instruments {
	return &Instruments{meter: meter}
}

// Count declares a monotonically increasing int64 counter
func (in *Instruments) Count(name, description, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.keep(name, err)
	return c
}

// InFlight declares an int64 up/down counter
func (in *Instruments) InFlight(name, description, unit string) metric.Int64UpDownCounter {
	c, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.keep(name, err)
	return c
}

// Level declares a float64 gauge for point-in-time values such as money totals
func (in *Instruments) Level(name, description, unit string) metric.Float64Gauge {
	g, err := in.meter.Float64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.keep(name, err)
	return g
}

// Seconds declares a duration histogram in seconds with explicit buckets
func (in *Instruments) Seconds(name, description string, buckets []float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{metric.WithDescription(description), metric.WithUnit("s")}
	if len(buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(buckets...))
	}
	h, err := in.meter.Float64Histogram(name, opts...)
	in.keep(name, err)
	return h
}

// Err returns the first instrument creation error
func (in *Instruments) Err() error {
	return in.err
}

func (in *Instruments) keep(name string, err error) {
	if err != nil && in.err == nil {
		in.err = fmt.Errorf("instrument %s: %w", name, err)
	}
}

// With wraps attributes as a measurement option
func With(attrs ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributeSet(attribute.NewSet(attrs...))
}

// Attribute keys shared by reconciliation metrics
var (
	AttrStockTakeType = attribute.Key("stock_take.type")
	AttrOutcome       = attribute.Key("outcome")
	AttrDirection     = attribute.Key("discrepancy.direction")
	AttrSource        = attribute.Key("snapshot.source")
)

// OperationDurationBuckets are bucket boundaries for finalize/commit/valuation runs (seconds)
var OperationDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Attribute keys for HTTP server metrics
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")
)

// HTTPDurationBuckets are bucket boundaries for HTTP request duration (seconds)
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	DBSystem        string // "postgresql" or "sqlite"
	LogFullSQL      bool   // include bound variables in spans, development only
	SlowQueryThresh time.Duration
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// RegisterDBTracing installs the otelgorm plugin plus callbacks that tag
// spans with rows affected and flag slow queries.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartTimeKey, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateQuerySpan(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	regs := []struct {
		name string
		err  error
	}{
		{"create:before", cb.Create().Before("gorm:create").Register("otel_timing:before_create", before)},
		{"query:before", cb.Query().Before("gorm:query").Register("otel_timing:before_query", before)},
		{"update:before", cb.Update().Before("gorm:update").Register("otel_timing:before_update", before)},
		{"delete:before", cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", before)},
		{"raw:before", cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", before)},
		{"create:after", cb.Create().After("gorm:create").Register("otel_slow_query:create", after)},
		{"query:after", cb.Query().After("gorm:query").Register("otel_slow_query:query", after)},
		{"update:after", cb.Update().After("gorm:update").Register("otel_slow_query:update", after)},
		{"delete:after", cb.Delete().After("gorm:delete").Register("otel_slow_query:delete", after)},
		{"raw:after", cb.Raw().After("gorm:raw").Register("otel_slow_query:raw", after)},
	}
	for _, r := range regs {
		if r.err != nil {
			return r.err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateQuerySpan(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

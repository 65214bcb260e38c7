package event

import (
	"context"
	"encoding/json"

	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AuditLogHandler writes every domain event to the structured log with its
// JSON payload, giving an append-only trail of stock changes.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit handler writing to logger
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

// EventTypes subscribes to all events
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// OversellMetricsHandler counts receipts that cleared an oversold balance
type OversellMetricsHandler struct {
	metrics *telemetry.ReconciliationMetrics
}

// NewOversellMetricsHandler creates the handler; nil metrics disables recording
func NewOversellMetricsHandler(metrics *telemetry.ReconciliationMetrics) *OversellMetricsHandler {
	return &OversellMetricsHandler{metrics: metrics}
}

// Handle records one oversell clear
func (h *OversellMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if _, ok := event.(*inventory.OversellClearedEvent); ok {
		h.metrics.RecordOversellCleared(ctx)
	}
	return nil
}

// EventTypes returns the oversell event only
func (h *OversellMetricsHandler) EventTypes() []string {
	return []string{inventory.EventTypeOversellCleared}
}

package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiveLineRequest is one line of incoming stock
type ReceiveLineRequest struct {
	ProductID        uuid.UUID       `json:"product_id" binding:"required"`
	QuantityReceived decimal.Decimal `json:"quantity_received" binding:"decimal_gt0"`
	UnitCost         decimal.Decimal `json:"unit_cost" binding:"decimal_gte0"`
}

// ReceiveStockRequest represents a goods-receipt
type ReceiveStockRequest struct {
	Lines []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReceiveLineResult reports what happened to one line
type ReceiveLineResult struct {
	ProductID uuid.UUID                    `json:"product_id"`
	Applied   bool                         `json:"applied"`
	Outcome   *inventory.TransitionOutcome `json:"outcome,omitempty"`
	Notices   []string                     `json:"notices"`
	Error     string                       `json:"error,omitempty"`
}

// ReceiveStockResponse aggregates per-line results
type ReceiveStockResponse struct {
	Lines            []ReceiveLineResult `json:"lines"`
	AppliedCount     int                 `json:"applied_count"`
	FailedCount      int                 `json:"failed_count"`
	OversellsCleared int                 `json:"oversells_cleared"`
}

// ReceivingService applies goods-receipts to the inventory store
type ReceivingService struct {
	store    inventory.InventoryStore
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(store inventory.InventoryStore, eventBus shared.EventPublisher, logger *zap.Logger) *ReceivingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivingService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Receive validates every line before touching the store, then applies each
// line independently. A failed line is reported and does not roll back the
// lines already applied.
func (s *ReceivingService) Receive(ctx context.Context, req ReceiveStockRequest) (*ReceiveStockResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receiving", "receive",
		telemetry.SpanAttrProductCount, len(req.Lines))
	defer span.End()

	if len(req.Lines) == 0 {
		err := shared.NewValidationError("At least one receiving line is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	lines := make([]inventory.ReceivingLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = inventory.ReceivingLine{
			ProductID:        l.ProductID,
			QuantityReceived: l.QuantityReceived,
			UnitCost:         l.UnitCost,
		}
		if err := lines[i].Validate(); err != nil {
			telemetry.RecordError(span, err)
			return nil, shared.NewValidationError(fmt.Sprintf("line %d: %s", i+1, err.Error()))
		}
	}

	response := &ReceiveStockResponse{Lines: make([]ReceiveLineResult, 0, len(lines))}
	events := make([]shared.DomainEvent, 0, len(lines))
	for _, line := range lines {
		result, lineEvents := s.receiveLine(ctx, line)
		response.Lines = append(response.Lines, result)
		events = append(events, lineEvents...)
		if !result.Applied {
			response.FailedCount++
			continue
		}
		response.AppliedCount++
		if result.Outcome.OversellCleared {
			response.OversellsCleared++
		}
	}

	s.publish(ctx, events)
	if response.FailedCount > 0 {
		telemetry.AddEvent(span, "receiving.partial", "failed", response.FailedCount)
	}
	telemetry.SetOK(span)

	return response, nil
}

// receiveLine reads the pre-receipt quantity immediately before writing the new one
func (s *ReceivingService) receiveLine(ctx context.Context, line inventory.ReceivingLine) (ReceiveLineResult, []shared.DomainEvent) {
	result := ReceiveLineResult{ProductID: line.ProductID, Notices: make([]string, 0)}
	fields := []zap.Field{zap.String("product_id", line.ProductID.String())}

	preQty, err := s.store.GetQuantity(ctx, line.ProductID)
	if err != nil {
		err = shared.NewDependencyError("reading pre-receipt quantity", err)
		result.Error = err.Error()
		s.logger.Warn("receiving line failed", append(fields, zap.Error(err))...)
		return result, nil
	}

	outcome, err := inventory.AnalyzeReceipt(preQty, line)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	if err := s.store.SetQuantity(ctx, line.ProductID, outcome.NewQuantity); err != nil {
		err = shared.NewDependencyError("writing received quantity", err)
		result.Error = err.Error()
		s.logger.Warn("receiving line failed", append(fields, zap.Error(err))...)
		return result, nil
	}

	result.Applied = true
	result.Outcome = &outcome
	result.Notices = outcome.Notices()
	for _, notice := range result.Notices {
		s.logger.Info(notice, fields...)
	}

	events := []shared.DomainEvent{inventory.NewStockReceivedEvent(line, outcome)}
	if outcome.OversellCleared {
		events = append(events, inventory.NewOversellClearedEvent(outcome))
	}
	return result, events
}

func (s *ReceivingService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish receiving events", zap.Error(err))
	}
}

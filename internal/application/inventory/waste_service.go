package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordWasteRequest represents a write-off of spoiled or damaged stock
type RecordWasteRequest struct {
	ProductID  uuid.UUID             `json:"product_id" binding:"required"`
	Quantity   decimal.Decimal       `json:"quantity" binding:"decimal_gt0"`
	Reason     inventory.WasteReason `json:"reason" binding:"omitempty,oneof=EXPIRED DAMAGED SPOILED THEFT OTHER"`
	Note       string                `json:"note" binding:"max=500"`
	RecordedBy string                `json:"recorded_by" binding:"max=100"`
	OccurredAt *time.Time            `json:"occurred_at"` // Optional, defaults to now
}

// WasteListFilter represents filter options for waste listings
type WasteListFilter struct {
	Period   string `form:"period" binding:"required"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// WasteEntryResponse represents a waste entry in API responses
type WasteEntryResponse struct {
	ID         uuid.UUID             `json:"id"`
	ProductID  uuid.UUID             `json:"product_id"`
	Quantity   decimal.Decimal       `json:"quantity"`
	UnitCost   decimal.Decimal       `json:"unit_cost"`
	TotalCost  decimal.Decimal       `json:"total_cost"`
	Reason     inventory.WasteReason `json:"reason"`
	Note       string                `json:"note,omitempty"`
	RecordedBy string                `json:"recorded_by,omitempty"`
	OccurredAt time.Time             `json:"occurred_at"`
	CreatedAt  time.Time             `json:"created_at"`
}

// ToWasteEntryResponse converts a waste entry to its response DTO
func ToWasteEntryResponse(w *inventory.WasteEntry) WasteEntryResponse {
	return WasteEntryResponse{
		ID:         w.ID,
		ProductID:  w.ProductID,
		Quantity:   w.Quantity,
		UnitCost:   w.UnitCost,
		TotalCost:  w.TotalCost(),
		Reason:     w.Reason,
		Note:       w.Note,
		RecordedBy: w.RecordedBy,
		OccurredAt: w.OccurredAt,
		CreatedAt:  w.CreatedAt,
	}
}

// WasteService records waste against the ledger that feeds valuation
type WasteService struct {
	repo     inventory.WasteEntryRepository
	store    inventory.InventoryReader
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewWasteService creates a new WasteService
func NewWasteService(repo inventory.WasteEntryRepository, store inventory.InventoryReader, eventBus shared.EventPublisher, logger *zap.Logger) *WasteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WasteService{
		repo:     repo,
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// RecordWaste writes off stock at the product's current unit cost.
// The system quantity is not changed.
func (s *WasteService) RecordWaste(ctx context.Context, req RecordWasteRequest) (*WasteEntryResponse, error) {
	if req.ProductID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID cannot be empty")
	}

	unitCost, err := s.store.GetCost(ctx, req.ProductID)
	if err != nil {
		return nil, shared.NewDependencyError("reading product cost", err)
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	entry, err := inventory.NewWasteEntry(req.ProductID, req.Quantity, unitCost, req.Reason, occurredAt)
	if err != nil {
		return nil, err
	}
	entry.Note = req.Note
	entry.RecordedBy = req.RecordedBy

	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("waste recorded",
		zap.String("product_id", entry.ProductID.String()),
		zap.String("quantity", entry.Quantity.String()),
		zap.String("total_cost", entry.TotalCost().StringFixed(2)),
		zap.String("reason", string(entry.Reason)),
	)
	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, inventory.NewWasteRecordedEvent(entry)); err != nil {
			s.logger.Warn("failed to publish waste event", zap.Error(err))
		}
	}

	response := ToWasteEntryResponse(entry)
	return &response, nil
}

// ListWaste lists entries recorded inside a "YYYY-MM" period
func (s *WasteService) ListWaste(ctx context.Context, filter WasteListFilter) ([]WasteEntryResponse, int64, error) {
	period, err := inventory.ParsePeriod(filter.Period)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByPeriod(ctx, period)
	if err != nil {
		return nil, 0, err
	}

	entries, err := s.repo.FindByPeriod(ctx, period, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]WasteEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToWasteEntryResponse(&entries[i])
	}
	return responses, total, nil
}

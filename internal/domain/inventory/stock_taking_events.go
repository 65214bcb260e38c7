package inventory

import (
	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for StockTakeSession
const AggregateTypeStockTake = "StockTakeSession"

// Stock-take event type constants
const (
	EventTypeStockTakeCreated      = "StockTakeCreated"
	EventTypeStockTakeCountRecord  = "StockTakeCountRecorded"
	EventTypeStockTakeFinalized    = "StockTakeFinalized"
	EventTypeStockTakeApplied      = "StockTakeApplied"
	EventTypeStockTakeCommitFailed = "StockTakeCommitFailed"
	EventTypeStockTakeAbandoned    = "StockTakeAbandoned"
)

// StockTakeCreatedEvent is raised when a counting session is opened
type StockTakeCreatedEvent struct {
	shared.BaseDomainEvent
	SessionID    uuid.UUID     `json:"session_id"`
	Type         StockTakeType `json:"type"`
	ProductCount int           `json:"product_count"`
	CreatedBy    string        `json:"created_by"`
}

// NewStockTakeCreatedEvent creates a new StockTakeCreatedEvent
func NewStockTakeCreatedEvent(st *StockTakeSession) *StockTakeCreatedEvent {
	return &StockTakeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakeCreated, AggregateTypeStockTake, st.ID),
		SessionID:       st.ID,
		Type:            st.Type,
		ProductCount:    len(st.ProductIDs),
		CreatedBy:       st.CreatedBy,
	}
}

// StockTakeCountRecordedEvent is raised when a physical count is recorded or overwritten
type StockTakeCountRecordedEvent struct {
	shared.BaseDomainEvent
	SessionID     uuid.UUID        `json:"session_id"`
	ProductID     uuid.UUID        `json:"product_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	PreviousCount *decimal.Decimal `json:"previous_count,omitempty"`
}

// NewStockTakeCountRecordedEvent creates a new StockTakeCountRecordedEvent
func NewStockTakeCountRecordedEvent(st *StockTakeSession, productID uuid.UUID, quantity decimal.Decimal, previous *decimal.Decimal) *StockTakeCountRecordedEvent {
	return &StockTakeCountRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakeCountRecord, AggregateTypeStockTake, st.ID),
		SessionID:       st.ID,
		ProductID:       productID,
		Quantity:        quantity,
		PreviousCount:   previous,
	}
}

// StockTakeFinalizedEvent is raised when counts are frozen and reconciled
type StockTakeFinalizedEvent struct {
	shared.BaseDomainEvent
	SessionID          uuid.UUID       `json:"session_id"`
	Type               StockTakeType   `json:"type"`
	TotalProducts      int             `json:"total_products"`
	DiscrepancyCount   int             `json:"discrepancy_count"`
	ShrinkageValue     decimal.Decimal `json:"shrinkage_value"`
	OverstockValue     decimal.Decimal `json:"overstock_value"`
	NetFinancialImpact decimal.Decimal `json:"net_financial_impact"`
	AccuracyRate       decimal.Decimal `json:"accuracy_rate"`
}

// NewStockTakeFinalizedEvent creates a new StockTakeFinalizedEvent
func NewStockTakeFinalizedEvent(st *StockTakeSession) *StockTakeFinalizedEvent {
	e := &StockTakeFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakeFinalized, AggregateTypeStockTake, st.ID),
		SessionID:       st.ID,
		Type:            st.Type,
	}
	if st.Report != nil {
		e.TotalProducts = st.Report.TotalProducts
		e.DiscrepancyCount = st.Report.DiscrepancyCount()
		e.ShrinkageValue = st.Report.ShrinkageValue
		e.OverstockValue = st.Report.OverstockValue
		e.NetFinancialImpact = st.Report.NetFinancialImpact
		e.AccuracyRate = st.Report.AccuracyRate
	}
	return e
}

// StockTakeAppliedEvent is raised when a session reaches APPLIED
type StockTakeAppliedEvent struct {
	shared.BaseDomainEvent
	SessionID        uuid.UUID     `json:"session_id"`
	Type             StockTakeType `json:"type"`
	InventoryUpdated bool          `json:"inventory_updated"`
	AppliedCount     int           `json:"applied_count"`
	// ProductIDs lists products whose quantity was overwritten, across all attempts
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// NewStockTakeAppliedEvent creates a new StockTakeAppliedEvent
func NewStockTakeAppliedEvent(st *StockTakeSession, result *CommitResult) *StockTakeAppliedEvent {
	ids := make([]uuid.UUID, 0, len(st.AppliedLines))
	for _, id := range st.ProductIDs {
		if st.AppliedLines[id] {
			ids = append(ids, id)
		}
	}
	return &StockTakeAppliedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockTakeApplied, AggregateTypeStockTake, st.ID),
		SessionID:        st.ID,
		Type:             st.Type,
		InventoryUpdated: len(ids) > 0,
		AppliedCount:     result.AppliedCount,
		ProductIDs:       ids,
	}
}

// StockTakeCommitFailedEvent is raised when some lines of a monthly commit were rejected
type StockTakeCommitFailedEvent struct {
	shared.BaseDomainEvent
	SessionID    uuid.UUID    `json:"session_id"`
	AppliedCount int          `json:"applied_count"`
	FailedLines  []FailedLine `json:"failed_lines"`
}

// NewStockTakeCommitFailedEvent creates a new StockTakeCommitFailedEvent
func NewStockTakeCommitFailedEvent(st *StockTakeSession, result *CommitResult) *StockTakeCommitFailedEvent {
	return &StockTakeCommitFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakeCommitFailed, AggregateTypeStockTake, st.ID),
		SessionID:       st.ID,
		AppliedCount:    result.AppliedCount,
		FailedLines:     result.FailedLines,
	}
}

// StockTakeAbandonedEvent is raised when a session is discarded
type StockTakeAbandonedEvent struct {
	shared.BaseDomainEvent
	SessionID      uuid.UUID     `json:"session_id"`
	Type           StockTakeType `json:"type"`
	PreviousStatus SessionStatus `json:"previous_status"`
	Reason         string        `json:"reason"`
}

// NewStockTakeAbandonedEvent creates a new StockTakeAbandonedEvent
func NewStockTakeAbandonedEvent(st *StockTakeSession) *StockTakeAbandonedEvent {
	previous := SessionStatusOpen
	if st.FinalizedAt != nil {
		previous = SessionStatusFinalized
	}
	return &StockTakeAbandonedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakeAbandoned, AggregateTypeStockTake, st.ID),
		SessionID:       st.ID,
		Type:            st.Type,
		PreviousStatus:  previous,
		Reason:          st.AbandonReason,
	}
}

package inventory

import (
	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeStockReceived   = "StockReceived"
	EventTypeOversellCleared = "OversellCleared"
	EventTypeWasteRecorded   = "WasteRecorded"
)

// StockReceivedEvent is raised after a receipt has been written to the inventory store
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	ProductID            uuid.UUID       `json:"product_id"`
	QuantityReceived     decimal.Decimal `json:"quantity_received"`
	UnitCost             decimal.Decimal `json:"unit_cost"`
	PreviousQuantity     decimal.Decimal `json:"previous_quantity"`
	NewQuantity          decimal.Decimal `json:"new_quantity"`
	InventoryValueChange decimal.Decimal `json:"inventory_value_change"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(line ReceivingLine, outcome TransitionOutcome) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeProduct, line.ProductID),
		ProductID:            line.ProductID,
		QuantityReceived:     line.QuantityReceived,
		UnitCost:             line.UnitCost,
		PreviousQuantity:     outcome.PreReceiptQuantity,
		NewQuantity:          outcome.NewQuantity,
		InventoryValueChange: outcome.InventoryValueChange,
	}
}

// OversellClearedEvent is raised when a receipt brings a negative balance back to zero or above
type OversellClearedEvent struct {
	shared.BaseDomainEvent
	ProductID         uuid.UUID       `json:"product_id"`
	OversellAmount    decimal.Decimal `json:"oversell_amount"`
	NewQuantity       decimal.Decimal `json:"new_quantity"`
	CrossedToPositive bool            `json:"crossed_to_positive"`
}

// NewOversellClearedEvent creates a new OversellClearedEvent
func NewOversellClearedEvent(outcome TransitionOutcome) *OversellClearedEvent {
	return &OversellClearedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeOversellCleared, AggregateTypeProduct, outcome.ProductID),
		ProductID:         outcome.ProductID,
		OversellAmount:    outcome.OversellAmount,
		NewQuantity:       outcome.NewQuantity,
		CrossedToPositive: outcome.CrossedToPositive,
	}
}

// WasteRecordedEvent is raised when spoiled or damaged stock is written off
type WasteRecordedEvent struct {
	shared.BaseDomainEvent
	WasteEntryID uuid.UUID       `json:"waste_entry_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Reason       string          `json:"reason"`
}

// NewWasteRecordedEvent creates a new WasteRecordedEvent
func NewWasteRecordedEvent(entry *WasteEntry) *WasteRecordedEvent {
	return &WasteRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWasteRecorded, AggregateTypeProduct, entry.ProductID),
		WasteEntryID:    entry.ID,
		ProductID:       entry.ProductID,
		Quantity:        entry.Quantity,
		TotalCost:       entry.TotalCost(),
		Reason:          string(entry.Reason),
	}
}

package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// WasteReason classifies why stock was written off
type WasteReason string

const (
	WasteReasonExpired WasteReason = "EXPIRED"
	WasteReasonDamaged WasteReason = "DAMAGED"
	WasteReasonSpoiled WasteReason = "SPOILED"
	WasteReasonTheft   WasteReason = "THEFT"
	WasteReasonOther   WasteReason = "OTHER"
)

// IsValid checks if the reason is a known WasteReason
func (r WasteReason) IsValid() bool {
	switch r {
	case WasteReasonExpired, WasteReasonDamaged, WasteReasonSpoiled, WasteReasonTheft, WasteReasonOther:
		return true
	}
	return false
}

// WasteEntry is one write-off recorded in the waste ledger.
// UnitCost is captured when the entry is recorded so later cost changes do not
// alter historical waste figures.
type WasteEntry struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	Reason     WasteReason
	Note       string
	RecordedBy string
	OccurredAt time.Time
	CreatedAt  time.Time
}

// NewWasteEntry creates a validated waste entry
func NewWasteEntry(productID uuid.UUID, quantity, unitCost decimal.Decimal, reason WasteReason, occurredAt time.Time) (*WasteEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("Waste quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewValidationError("Unit cost cannot be negative")
	}
	if reason == "" {
		reason = WasteReasonOther
	}
	if !reason.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid waste reason %q", reason))
	}
	if occurredAt.IsZero() {
		return nil, shared.NewValidationError("Waste date is required")
	}

	return &WasteEntry{
		ID:         uuid.New(),
		ProductID:  productID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		Reason:     reason,
		OccurredAt: occurredAt,
		CreatedAt:  time.Now(),
	}, nil
}

// TotalCost returns quantity * unit cost rounded to money precision
func (w *WasteEntry) TotalCost() decimal.Decimal {
	return valueobject.RoundMoney(w.Quantity.Mul(w.UnitCost))
}

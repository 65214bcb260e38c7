package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReceivingLine is one item of incoming stock
type ReceivingLine struct {
	ProductID        uuid.UUID       `json:"product_id"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
}

// Validate checks the line before it reaches the analyzer
func (l ReceivingLine) Validate() error {
	if l.ProductID == uuid.Nil {
		return shared.NewValidationError("Product ID cannot be empty")
	}
	if !l.QuantityReceived.IsPositive() {
		return shared.NewValidationError("Received quantity must be positive")
	}
	if l.UnitCost.IsNegative() {
		return shared.NewValidationError("Unit cost cannot be negative")
	}
	return nil
}

// TransitionOutcome describes how a receipt moves a product's system quantity
type TransitionOutcome struct {
	ProductID            uuid.UUID       `json:"product_id"`
	PreReceiptQuantity   decimal.Decimal `json:"pre_receipt_quantity"`
	QuantityReceived     decimal.Decimal `json:"quantity_received"`
	OversellAmount       decimal.Decimal `json:"oversell_amount"`
	NewQuantity          decimal.Decimal `json:"new_quantity"`
	OversellCleared      bool            `json:"oversell_cleared"`
	CrossedToPositive    bool            `json:"crossed_to_positive"`
	InventoryValueChange decimal.Decimal `json:"inventory_value_change"`
}

// StillOversold reports a receipt that reduced but did not clear a negative balance
func (o TransitionOutcome) StillOversold() bool {
	return o.NewQuantity.IsNegative()
}

// Notices returns the user-facing messages for this transition
func (o TransitionOutcome) Notices() []string {
	notices := make([]string, 0, 2)
	switch {
	case o.CrossedToPositive:
		notices = append(notices,
			fmt.Sprintf("Oversell of %s units cleared", o.OversellAmount.String()),
			fmt.Sprintf("Stock is back in positive territory at %s units", o.NewQuantity.String()))
	case o.OversellCleared:
		notices = append(notices,
			fmt.Sprintf("Oversell of %s units cleared; stock is now exactly zero", o.OversellAmount.String()))
	case o.StillOversold():
		notices = append(notices,
			fmt.Sprintf("Still oversold by %s units after receipt", o.NewQuantity.Neg().String()))
	}
	return notices
}

// AnalyzeReceipt computes the transition caused by receiving a line against the
// product's system quantity read immediately before the update.
// Value only accrues for units that end up above zero.
func AnalyzeReceipt(preReceiptQty decimal.Decimal, line ReceivingLine) (TransitionOutcome, error) {
	if err := line.Validate(); err != nil {
		return TransitionOutcome{}, err
	}

	newQty := preReceiptQty.Add(line.QuantityReceived)
	wasOversold := preReceiptQty.IsNegative()
	valueChange := line.UnitCost.Mul(valueobject.ClampNonNegative(newQty).Sub(valueobject.ClampNonNegative(preReceiptQty)))

	return TransitionOutcome{
		ProductID:            line.ProductID,
		PreReceiptQuantity:   preReceiptQty,
		QuantityReceived:     line.QuantityReceived,
		OversellAmount:       valueobject.ClampNonNegative(preReceiptQty.Neg()),
		NewQuantity:          newQty,
		OversellCleared:      wasOversold && !newQty.IsNegative(),
		CrossedToPositive:    wasOversold && newQty.IsPositive(),
		InventoryValueChange: valueobject.RoundMoney(valueChange),
	}, nil
}

package inventory

import (
	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Classification is the outcome of comparing a physical count with the system quantity
type Classification string

const (
	ClassificationExact      Classification = "EXACT"
	ClassificationOverstock  Classification = "OVERSTOCK"
	ClassificationUnderstock Classification = "UNDERSTOCK"
)

// String returns the string representation of Classification
func (c Classification) String() string {
	return string(c)
}

// ClassificationOf maps the sign of a discrepancy to its classification
func ClassificationOf(discrepancy decimal.Decimal) Classification {
	return classificationForSign(discrepancy.Sign())
}

func classificationForSign(sign int) Classification {
	switch sign {
	case 1:
		return ClassificationOverstock
	case -1:
		return ClassificationUnderstock
	default:
		return ClassificationExact
	}
}

// DiscrepancyRecord is the derived comparison of one product's count
type DiscrepancyRecord struct {
	ProductID       uuid.UUID       `json:"product_id"`
	SystemQty       decimal.Decimal `json:"system_qty"`
	CountedQty      decimal.Decimal `json:"counted_qty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Discrepancy     decimal.Decimal `json:"discrepancy"`
	FinancialImpact decimal.Decimal `json:"financial_impact"`
	Classification  Classification  `json:"classification"`
}

// IsExact reports a zero discrepancy
func (r DiscrepancyRecord) IsExact() bool {
	return r.Classification == ClassificationExact
}

// Classify compares a counted quantity against the system quantity.
// systemQty may be negative (prior oversell); countedQty and unitCost may not.
func Classify(productID uuid.UUID, systemQty, countedQty, unitCost decimal.Decimal) (DiscrepancyRecord, error) {
	if countedQty.IsNegative() {
		return DiscrepancyRecord{}, shared.NewValidationError("Counted quantity cannot be negative")
	}
	if unitCost.IsNegative() {
		return DiscrepancyRecord{}, shared.NewValidationError("Unit cost cannot be negative")
	}

	discrepancy := countedQty.Sub(systemQty)
	return DiscrepancyRecord{
		ProductID:       productID,
		SystemQty:       systemQty,
		CountedQty:      countedQty,
		UnitCost:        unitCost,
		Discrepancy:     discrepancy,
		FinancialImpact: valueobject.RoundMoney(discrepancy.Mul(unitCost)),
		Classification:  classificationForSign(valueobject.DiscrepancySign(systemQty, countedQty)),
	}, nil
}

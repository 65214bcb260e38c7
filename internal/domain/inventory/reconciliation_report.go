package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReconciliationReport summarises a finalized stock-take.
// Records keep the session's product order; the partitions reference the same records.
type ReconciliationReport struct {
	SessionID          uuid.UUID           `json:"session_id"`
	Records            []DiscrepancyRecord `json:"records"`
	ExactMatches       []DiscrepancyRecord `json:"exact_matches"`
	Overstock          []DiscrepancyRecord `json:"overstock"`
	Understock         []DiscrepancyRecord `json:"understock"`
	TotalProducts      int                 `json:"total_products"`
	ShrinkageValue     decimal.Decimal     `json:"shrinkage_value"`
	OverstockValue     decimal.Decimal     `json:"overstock_value"`
	NetFinancialImpact decimal.Decimal     `json:"net_financial_impact"`
	AccuracyRate       decimal.Decimal     `json:"accuracy_rate"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// NewReconciliationReport partitions records and computes the aggregates
func NewReconciliationReport(sessionID uuid.UUID, records []DiscrepancyRecord) *ReconciliationReport {
	r := &ReconciliationReport{
		SessionID:          sessionID,
		Records:            records,
		ExactMatches:       make([]DiscrepancyRecord, 0),
		Overstock:          make([]DiscrepancyRecord, 0),
		Understock:         make([]DiscrepancyRecord, 0),
		TotalProducts:      len(records),
		ShrinkageValue:     decimal.Zero,
		OverstockValue:     decimal.Zero,
		NetFinancialImpact: decimal.Zero,
		AccuracyRate:       decimal.Zero,
		GeneratedAt:        time.Now(),
	}

	for _, rec := range records {
		switch rec.Classification {
		case ClassificationExact:
			r.ExactMatches = append(r.ExactMatches, rec)
		case ClassificationOverstock:
			r.Overstock = append(r.Overstock, rec)
			r.OverstockValue = r.OverstockValue.Add(rec.FinancialImpact)
		case ClassificationUnderstock:
			r.Understock = append(r.Understock, rec)
			r.ShrinkageValue = r.ShrinkageValue.Add(rec.FinancialImpact.Abs())
		}
	}

	r.ShrinkageValue = valueobject.RoundMoney(r.ShrinkageValue)
	r.OverstockValue = valueobject.RoundMoney(r.OverstockValue)
	r.NetFinancialImpact = r.OverstockValue.Sub(r.ShrinkageValue)
	r.AccuracyRate = valueobject.Ratio(decimal.NewFromInt(int64(len(r.ExactMatches))), decimal.NewFromInt(int64(r.TotalProducts)))

	return r
}

// AccuracyPercent returns the accuracy rate as a percentage
func (r *ReconciliationReport) AccuracyPercent() decimal.Decimal {
	return valueobject.RoundMoney(r.AccuracyRate.Mul(decimal.NewFromInt(100)))
}

// DiscrepancyCount returns the number of non-exact records
func (r *ReconciliationReport) DiscrepancyCount() int {
	return len(r.Overstock) + len(r.Understock)
}

// NonExact returns the records that differ from the system, in report order
func (r *ReconciliationReport) NonExact() []DiscrepancyRecord {
	result := make([]DiscrepancyRecord, 0, r.DiscrepancyCount())
	for _, rec := range r.Records {
		if !rec.IsExact() {
			result = append(result, rec)
		}
	}
	return result
}

// Record returns the record for a product, if present
func (r *ReconciliationReport) Record(productID uuid.UUID) (DiscrepancyRecord, bool) {
	for _, rec := range r.Records {
		if rec.ProductID == productID {
			return rec, true
		}
	}
	return DiscrepancyRecord{}, false
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// ValuationSnapshotModel is the persistence model for stored valuation reports.
// Headline totals are columns so they can be queried; the full report is JSON.
type ValuationSnapshotModel struct {
	ID               uuid.UUID               `gorm:"type:uuid;primary_key"`
	PeriodLabel      string                  `gorm:"type:varchar(32);not null;index"`
	PeriodStart      time.Time               `gorm:"not null"`
	PeriodEnd        time.Time               `gorm:"not null"`
	Source           report.SnapshotSource   `gorm:"type:varchar(20);not null"`
	TotalStockValue  decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	TotalRetailValue decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	WasteCost        decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Report           *report.ValuationReport `gorm:"type:text;serializer:json"`
	CreatedAt        time.Time               `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ValuationSnapshotModel) TableName() string {
	return "valuation_snapshots"
}

// ToDomain converts the persistence model to a domain ValuationSnapshot.
func (m *ValuationSnapshotModel) ToDomain() *report.ValuationSnapshot {
	return &report.ValuationSnapshot{
		ID:        m.ID,
		Source:    m.Source,
		Report:    m.Report,
		CreatedAt: m.CreatedAt,
	}
}

// ValuationSnapshotModelFromDomain creates a persistence model from a domain snapshot.
func ValuationSnapshotModelFromDomain(s *report.ValuationSnapshot) *ValuationSnapshotModel {
	m := &ValuationSnapshotModel{
		ID:        s.ID,
		Source:    s.Source,
		Report:    s.Report,
		CreatedAt: s.CreatedAt,
	}
	if s.Report != nil {
		m.PeriodLabel = s.Report.PeriodLabel
		m.PeriodStart = s.Report.PeriodStart
		m.PeriodEnd = s.Report.PeriodEnd
		m.TotalStockValue = s.Report.TotalStockValue
		m.TotalRetailValue = s.Report.TotalRetailValue
		m.WasteCost = s.Report.WasteCost
	}
	return m
}

// AllModels lists every model for AutoMigrate on SQLite runs
func AllModels() []any {
	return []any{
		&ProductModel{},
		&WasteEntryModel{},
		&StockTakeSessionModel{},
		&ValuationSnapshotModel{},
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for products in the local inventory store.
type ProductModel struct {
	BaseModel
	SKU            string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Unit           string          `gorm:"type:varchar(20)"`
	SystemQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStockLevel  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		ID:             m.ID,
		SKU:            m.SKU,
		Name:           m.Name,
		Unit:           m.Unit,
		SystemQuantity: m.SystemQuantity,
		CostPrice:      m.CostPrice,
		SellingPrice:   m.SellingPrice,
		MinStockLevel:  m.MinStockLevel,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	now := time.Now()
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = now
	}
	return &ProductModel{
		BaseModel: BaseModel{
			ID:        p.ID,
			CreatedAt: now,
			UpdatedAt: updated,
		},
		SKU:            p.SKU,
		Name:           p.Name,
		Unit:           p.Unit,
		SystemQuantity: p.SystemQuantity,
		CostPrice:      p.CostPrice,
		SellingPrice:   p.SellingPrice,
		MinStockLevel:  p.MinStockLevel,
	}
}

// WasteEntryModel is the persistence model for recorded waste.
type WasteEntryModel struct {
	ID         uuid.UUID             `gorm:"type:uuid;primary_key"`
	ProductID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Quantity   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	UnitCost   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Reason     inventory.WasteReason `gorm:"type:varchar(20);not null"`
	Note       string                `gorm:"type:varchar(500)"`
	RecordedBy string                `gorm:"type:varchar(100)"`
	OccurredAt time.Time             `gorm:"not null;index"`
	CreatedAt  time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WasteEntryModel) TableName() string {
	return "waste_entries"
}

// ToDomain converts the persistence model to a domain WasteEntry.
func (m *WasteEntryModel) ToDomain() inventory.WasteEntry {
	return inventory.WasteEntry{
		ID:         m.ID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		UnitCost:   m.UnitCost,
		Reason:     m.Reason,
		Note:       m.Note,
		RecordedBy: m.RecordedBy,
		OccurredAt: m.OccurredAt,
		CreatedAt:  m.CreatedAt,
	}
}

// WasteEntryModelFromDomain creates a persistence model from a domain WasteEntry.
func WasteEntryModelFromDomain(e *inventory.WasteEntry) *WasteEntryModel {
	return &WasteEntryModel{
		ID:         e.ID,
		ProductID:  e.ProductID,
		Quantity:   e.Quantity,
		UnitCost:   e.UnitCost,
		Reason:     e.Reason,
		Note:       e.Note,
		RecordedBy: e.RecordedBy,
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
	}
}

// StockTakeSessionModel is the persistence model for the StockTakeSession aggregate root.
// Scope, counts, report and commit progress are stored as JSON text.
type StockTakeSessionModel struct {
	AggregateModel
	Type          inventory.StockTakeType         `gorm:"type:varchar(20);not null;index"`
	Status        inventory.SessionStatus         `gorm:"type:varchar(20);not null;index;default:'OPEN'"`
	ProductIDs    []uuid.UUID                     `gorm:"type:text;serializer:json"`
	Counts        map[uuid.UUID]decimal.Decimal   `gorm:"type:text;serializer:json"`
	Report        *inventory.ReconciliationReport `gorm:"type:text;serializer:json"`
	AppliedLines  map[uuid.UUID]bool              `gorm:"type:text;serializer:json"`
	LastCommit    *inventory.CommitResult         `gorm:"type:text;serializer:json"`
	CreatedBy     string                          `gorm:"type:varchar(100)"`
	Note          string                          `gorm:"type:varchar(500)"`
	FinalizedAt   *time.Time                      `gorm:""`
	AppliedAt     *time.Time                      `gorm:""`
	AbandonedAt   *time.Time                      `gorm:""`
	AbandonReason string                          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StockTakeSessionModel) TableName() string {
	return "stock_take_sessions"
}

// ToDomain converts the persistence model to a domain StockTakeSession.
func (m *StockTakeSessionModel) ToDomain() *inventory.StockTakeSession {
	st := &inventory.StockTakeSession{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Type:              m.Type,
		Status:            m.Status,
		ProductIDs:        m.ProductIDs,
		Counts:            m.Counts,
		Report:            m.Report,
		AppliedLines:      m.AppliedLines,
		LastCommit:        m.LastCommit,
		CreatedBy:         m.CreatedBy,
		Note:              m.Note,
		FinalizedAt:       m.FinalizedAt,
		AppliedAt:         m.AppliedAt,
		AbandonedAt:       m.AbandonedAt,
		AbandonReason:     m.AbandonReason,
	}
	if st.ProductIDs == nil {
		st.ProductIDs = []uuid.UUID{}
	}
	if st.Counts == nil {
		st.Counts = make(map[uuid.UUID]decimal.Decimal)
	}
	if st.AppliedLines == nil {
		st.AppliedLines = make(map[uuid.UUID]bool)
	}
	return st
}

// FromDomain populates the persistence model from a domain StockTakeSession.
func (m *StockTakeSessionModel) FromDomain(st *inventory.StockTakeSession) {
	m.FromDomainAggregateRoot(st.BaseAggregateRoot)
	m.Type = st.Type
	m.Status = st.Status
	m.ProductIDs = st.ProductIDs
	m.Counts = st.Counts
	m.Report = st.Report
	m.AppliedLines = st.AppliedLines
	m.LastCommit = st.LastCommit
	m.CreatedBy = st.CreatedBy
	m.Note = st.Note
	m.FinalizedAt = st.FinalizedAt
	m.AppliedAt = st.AppliedAt
	m.AbandonedAt = st.AbandonedAt
	m.AbandonReason = st.AbandonReason
}

// StockTakeSessionModelFromDomain creates a new persistence model from a domain session.
func StockTakeSessionModelFromDomain(st *inventory.StockTakeSession) *StockTakeSessionModel {
	m := &StockTakeSessionModel{}
	m.FromDomain(st)
	return m
}

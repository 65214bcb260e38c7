package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryReader reads authoritative product figures from the inventory store
type InventoryReader interface {
	GetQuantity(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
	GetCost(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
	GetPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}

// InventoryWriter applies quantity updates. A successful SetQuantity makes
// the new quantity the system of record; repeating it with the same value is a no-op.
type InventoryWriter interface {
	SetQuantity(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error
}

// InventoryStore is the full inventory store collaborator
type InventoryStore interface {
	InventoryReader
	InventoryWriter
	// GetProduct returns the complete product record
	GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error)
	// ListProducts returns every product for valuation
	ListProducts(ctx context.Context) ([]Product, error)
}

// WasteLedger supplies aggregate waste cost for a period
type WasteLedger interface {
	GetWasteCostForPeriod(ctx context.Context, period Period) (decimal.Decimal, error)
}

package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product is the inventory store's record of a sellable item.
// SystemQuantity may be negative when more units were sold than the
// system believed were on hand (oversold).
type Product struct {
	ID             uuid.UUID
	SKU            string
	Name           string
	Unit           string
	SystemQuantity decimal.Decimal
	CostPrice      decimal.Decimal
	SellingPrice   decimal.Decimal
	MinStockLevel  decimal.Decimal
	UpdatedAt      time.Time
}

// NewProduct creates a product, rejecting negative prices or threshold
func NewProduct(sku, name string, quantity, costPrice, sellingPrice, minStock decimal.Decimal) (*Product, error) {
	if sku == "" {
		return nil, shared.NewValidationError("SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Product name cannot be empty")
	}
	p := &Product{
		ID:             uuid.New(),
		SKU:            sku,
		Name:           name,
		SystemQuantity: quantity,
		CostPrice:      costPrice,
		SellingPrice:   sellingPrice,
		MinStockLevel:  minStock,
		UpdatedAt:      time.Now(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the monetary and threshold invariants
func (p *Product) Validate() error {
	if p.CostPrice.IsNegative() {
		return shared.NewValidationError("Cost price cannot be negative")
	}
	if p.SellingPrice.IsNegative() {
		return shared.NewValidationError("Selling price cannot be negative")
	}
	if p.MinStockLevel.IsNegative() {
		return shared.NewValidationError("Minimum stock level cannot be negative")
	}
	return nil
}

// OnHandQuantity is the quantity that carries asset value: max(0, SystemQuantity)
func (p *Product) OnHandQuantity() decimal.Decimal {
	return valueobject.ClampNonNegative(p.SystemQuantity)
}

// StockValue returns max(0, SystemQuantity) * CostPrice
func (p *Product) StockValue() decimal.Decimal {
	return valueobject.RoundMoney(p.OnHandQuantity().Mul(p.CostPrice))
}

// IsOversold reports a negative recorded quantity
func (p *Product) IsOversold() bool {
	return p.SystemQuantity.IsNegative()
}

// OversoldUnits returns max(0, -SystemQuantity)
func (p *Product) OversoldUnits() decimal.Decimal {
	return valueobject.ClampNonNegative(p.SystemQuantity.Neg())
}

// IsBelowMinimum reports whether stock sits under a configured threshold
func (p *Product) IsBelowMinimum() bool {
	return p.MinStockLevel.IsPositive() && p.SystemQuantity.LessThan(p.MinStockLevel)
}

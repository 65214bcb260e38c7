package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ValuationInput is the per-product data the aggregator needs
type ValuationInput struct {
	ProductID     uuid.UUID
	SKU           string
	Name          string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	SellingPrice  decimal.Decimal
	MinStockLevel decimal.Decimal
}

// ValuationInputFromProduct maps an inventory product to a valuation input
func ValuationInputFromProduct(p inventory.Product) ValuationInput {
	return ValuationInput{
		ProductID:     p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Quantity:      p.SystemQuantity,
		UnitCost:      p.CostPrice,
		SellingPrice:  p.SellingPrice,
		MinStockLevel: p.MinStockLevel,
	}
}

// ProductValuation is the valuation of a single product.
// Value fields use max(0, Quantity); oversold units never carry value.
type ProductValuation struct {
	ProductID         uuid.UUID       `json:"product_id"`
	SKU               string          `json:"sku,omitempty"`
	Name              string          `json:"name,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	EffectiveQuantity decimal.Decimal `json:"effective_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	StockValue        decimal.Decimal `json:"stock_value"`
	RetailValue       decimal.Decimal `json:"retail_value"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	GPMarginPercent   decimal.Decimal `json:"gp_margin_percent"`
	Oversold          bool            `json:"oversold"`
	OversoldUnits     decimal.Decimal `json:"oversold_units"`
	BelowMinimum      bool            `json:"below_minimum"`
}

// ValuationReport is a portfolio snapshot for a period
type ValuationReport struct {
	PeriodLabel            string             `json:"period"`
	PeriodStart            time.Time          `json:"period_start"`
	PeriodEnd              time.Time          `json:"period_end"`
	Products               []ProductValuation `json:"products"`
	TotalProducts          int                `json:"total_products"`
	TotalQuantity          decimal.Decimal    `json:"total_quantity"`
	TotalStockValue        decimal.Decimal    `json:"total_stock_value"`
	TotalRetailValue       decimal.Decimal    `json:"total_retail_value"`
	TotalGrossProfit       decimal.Decimal    `json:"total_gross_profit"`
	WasteCost              decimal.Decimal    `json:"waste_cost"`
	WasteDegraded          bool               `json:"waste_degraded"`
	AdjustedGrossProfit    decimal.Decimal    `json:"adjusted_gross_profit"`
	NetProfitMarginPercent decimal.Decimal    `json:"net_profit_margin_percent"`
	ShrinkageRatePercent   decimal.Decimal    `json:"shrinkage_rate_percent"`
	OversoldProducts       int                `json:"oversold_products"`
	OversoldUnits          decimal.Decimal    `json:"oversold_units"`
	OversoldCostExposure   decimal.Decimal    `json:"oversold_cost_exposure"`
	LowStockProducts       int                `json:"low_stock_products"`
	GeneratedAt            time.Time          `json:"generated_at"`
}

// TotalCost is the cost basis of on-hand stock, the denominator for portfolio margins
func (r *ValuationReport) TotalCost() decimal.Decimal {
	return r.TotalStockValue
}

// ValueProduct computes one product's valuation
func ValueProduct(in ValuationInput) (ProductValuation, error) {
	if in.UnitCost.IsNegative() {
		return ProductValuation{}, shared.NewValidationError("Unit cost cannot be negative")
	}
	if in.SellingPrice.IsNegative() {
		return ProductValuation{}, shared.NewValidationError("Selling price cannot be negative")
	}

	effective := valueobject.ClampNonNegative(in.Quantity)
	margin := in.SellingPrice.Sub(in.UnitCost)

	return ProductValuation{
		ProductID:         in.ProductID,
		SKU:               in.SKU,
		Name:              in.Name,
		Quantity:          in.Quantity,
		EffectiveQuantity: effective,
		UnitCost:          in.UnitCost,
		SellingPrice:      in.SellingPrice,
		StockValue:        valueobject.RoundMoney(in.UnitCost.Mul(effective)),
		RetailValue:       valueobject.RoundMoney(in.SellingPrice.Mul(effective)),
		GrossProfit:       valueobject.RoundMoney(margin.Mul(effective)),
		GPMarginPercent:   valueobject.Percent(margin, in.UnitCost),
		Oversold:          in.Quantity.IsNegative(),
		OversoldUnits:     valueobject.ClampNonNegative(in.Quantity.Neg()),
		BelowMinimum:      in.MinStockLevel.IsPositive() && in.Quantity.LessThan(in.MinStockLevel),
	}, nil
}

// ComputeValuation values every product and adjusts the portfolio gross profit by
// the waste cost of the period. Portfolio totals are sums of the per-product figures.
// Percentages are zero when total cost is zero.
func ComputeValuation(items []ValuationInput, wasteCost decimal.Decimal, period inventory.Period) (*ValuationReport, error) {
	if wasteCost.IsNegative() {
		return nil, shared.NewValidationError("Waste cost cannot be negative")
	}

	r := &ValuationReport{
		PeriodStart:          period.Start,
		PeriodEnd:            period.End,
		Products:             make([]ProductValuation, 0, len(items)),
		TotalQuantity:        decimal.Zero,
		TotalStockValue:      decimal.Zero,
		TotalRetailValue:     decimal.Zero,
		TotalGrossProfit:     decimal.Zero,
		WasteCost:            valueobject.RoundMoney(wasteCost),
		OversoldUnits:        decimal.Zero,
		OversoldCostExposure: decimal.Zero,
		GeneratedAt:          time.Now(),
	}
	if !period.IsZero() {
		r.PeriodLabel = period.Label()
	}

	for _, in := range items {
		pv, err := ValueProduct(in)
		if err != nil {
			return nil, err
		}
		r.Products = append(r.Products, pv)
		r.TotalQuantity = r.TotalQuantity.Add(pv.EffectiveQuantity)
		r.TotalStockValue = r.TotalStockValue.Add(pv.StockValue)
		r.TotalRetailValue = r.TotalRetailValue.Add(pv.RetailValue)
		r.TotalGrossProfit = r.TotalGrossProfit.Add(pv.GrossProfit)
		if pv.Oversold {
			r.OversoldProducts++
			r.OversoldUnits = r.OversoldUnits.Add(pv.OversoldUnits)
			r.OversoldCostExposure = r.OversoldCostExposure.Add(pv.OversoldUnits.Mul(pv.UnitCost))
		}
		if pv.BelowMinimum {
			r.LowStockProducts++
		}
	}

	r.TotalProducts = len(r.Products)
	r.OversoldCostExposure = valueobject.RoundMoney(r.OversoldCostExposure)
	r.AdjustedGrossProfit = valueobject.RoundMoney(r.TotalGrossProfit.Sub(r.WasteCost))
	r.NetProfitMarginPercent = valueobject.Percent(r.AdjustedGrossProfit, r.TotalCost())
	r.ShrinkageRatePercent = valueobject.Percent(r.WasteCost, r.TotalCost())

	return r, nil
}

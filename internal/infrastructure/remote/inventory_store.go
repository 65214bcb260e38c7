package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// productDTO is the shop backend's product representation
type productDTO struct {
	ID            uuid.UUID       `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (d productDTO) toDomain() inventory.Product {
	return inventory.Product{
		ID:             d.ID,
		SKU:            d.SKU,
		Name:           d.Name,
		Unit:           d.Unit,
		SystemQuantity: d.Quantity,
		CostPrice:      d.CostPrice,
		SellingPrice:   d.SellingPrice,
		MinStockLevel:  d.MinStockLevel,
		UpdatedAt:      d.UpdatedAt,
	}
}

type setQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// RemoteInventoryStore implements inventory.InventoryStore against the shop backend.
type RemoteInventoryStore struct {
	client *Client
}

// NewRemoteInventoryStore creates a store backed by client
func NewRemoteInventoryStore(client *Client) *RemoteInventoryStore {
	return &RemoteInventoryStore{client: client}
}

// GetProduct fetches one product
func (s *RemoteInventoryStore) GetProduct(ctx context.Context, productID uuid.UUID) (*inventory.Product, error) {
	var body envelope[productDTO]
	var apiErr envelope[any]
	resp, err := s.client.http.R().
		SetContext(ctx).
		SetPathParam("id", productID.String()).
		SetResult(&body).
		SetError(&apiErr).
		Get("/products/{id}")
	if err := s.client.check(fmt.Sprintf("get product %s", productID), resp, err, &apiErr); err != nil {
		return nil, err
	}
	p := body.Data.toDomain()
	return &p, nil
}

// GetQuantity returns the system quantity of a product
func (s *RemoteInventoryStore) GetQuantity(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.SystemQuantity, nil
}

// GetCost returns the unit cost of a product
func (s *RemoteInventoryStore) GetCost(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.CostPrice, nil
}

// GetPrice returns the selling price of a product
func (s *RemoteInventoryStore) GetPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.SellingPrice, nil
}

// ListProducts fetches the full catalog
func (s *RemoteInventoryStore) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	var body envelope[[]productDTO]
	var apiErr envelope[any]
	resp, err := s.client.http.R().
		SetContext(ctx).
		SetResult(&body).
		SetError(&apiErr).
		Get("/products")
	if err := s.client.check("list products", resp, err, &apiErr); err != nil {
		return nil, err
	}

	products := make([]inventory.Product, len(body.Data))
	for i, d := range body.Data {
		products[i] = d.toDomain()
	}
	return products, nil
}

// SetQuantity replaces the system quantity of a product. The backend treats
// a PUT of the current value as a no-op.
func (s *RemoteInventoryStore) SetQuantity(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error {
	var apiErr envelope[any]
	resp, err := s.client.http.R().
		SetContext(ctx).
		SetPathParam("id", productID.String()).
		SetBody(setQuantityRequest{Quantity: quantity}).
		SetError(&apiErr).
		Put("/products/{id}/quantity")
	return s.client.check(fmt.Sprintf("set quantity of product %s", productID), resp, err, &apiErr)
}

var _ inventory.InventoryStore = (*RemoteInventoryStore)(nil)

package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInventoryStore implements inventory.InventoryStore over the products table
type GormInventoryStore struct {
	db *gorm.DB
}

// NewGormInventoryStore creates a new GormInventoryStore
func NewGormInventoryStore(db *gorm.DB) *GormInventoryStore {
	return &GormInventoryStore{db: db}
}

func (s *GormInventoryStore) findModel(ctx context.Context, productID uuid.UUID) (*models.ProductModel, error) {
	var model models.ProductModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, shared.ErrNotFound)
		}
		return nil, err
	}
	return &model, nil
}

// GetProduct returns the complete product record
func (s *GormInventoryStore) GetProduct(ctx context.Context, productID uuid.UUID) (*inventory.Product, error) {
	model, err := s.findModel(ctx, productID)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetQuantity returns the recorded system quantity, which may be negative
func (s *GormInventoryStore) GetQuantity(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	model, err := s.findModel(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return model.SystemQuantity, nil
}

// GetCost returns the unit cost price
func (s *GormInventoryStore) GetCost(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	model, err := s.findModel(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return model.CostPrice, nil
}

// GetPrice returns the unit selling price
func (s *GormInventoryStore) GetPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	model, err := s.findModel(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return model.SellingPrice, nil
}

// ListProducts returns every product ordered by SKU
func (s *GormInventoryStore) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	var rows []models.ProductModel
	if err := s.db.WithContext(ctx).Order("sku ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]inventory.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// SetQuantity overwrites the system quantity. Writing the same value twice is a no-op.
func (s *GormInventoryStore) SetQuantity(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error {
	result := s.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"system_quantity": quantity,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", productID, shared.ErrNotFound)
	}
	return nil
}

// Save creates or updates a product
func (s *GormInventoryStore) Save(ctx context.Context, product *inventory.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
}

package persistence

import (
	"context"

	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/domain/shared/valueobject"
	"github.com/shopkeeper/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormWasteEntryRepository implements inventory.WasteEntryRepository using GORM.
// It also serves as the local inventory.WasteLedger.
type GormWasteEntryRepository struct {
	db *gorm.DB
}

// NewGormWasteEntryRepository creates a new GormWasteEntryRepository
func NewGormWasteEntryRepository(db *gorm.DB) *GormWasteEntryRepository {
	return &GormWasteEntryRepository{db: db}
}

// Save records a waste entry
func (r *GormWasteEntryRepository) Save(ctx context.Context, entry *inventory.WasteEntry) error {
	return r.db.WithContext(ctx).Create(models.WasteEntryModelFromDomain(entry)).Error
}

func (r *GormWasteEntryRepository) periodScope(ctx context.Context, period inventory.Period) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.WasteEntryModel{}).
		Where("occurred_at >= ? AND occurred_at < ?", period.Start, period.End)
}

// FindByPeriod lists entries whose OccurredAt falls inside [Start, End)
func (r *GormWasteEntryRepository) FindByPeriod(ctx context.Context, period inventory.Period, filter shared.Filter) ([]inventory.WasteEntry, error) {
	var rows []models.WasteEntryModel
	if err := r.periodScope(ctx, period).
		Scopes(wasteEntrySort.page(filter)).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]inventory.WasteEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// CountByPeriod counts entries inside the period
func (r *GormWasteEntryRepository) CountByPeriod(ctx context.Context, period inventory.Period) (int64, error) {
	var count int64
	if err := r.periodScope(ctx, period).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetWasteCostForPeriod sums quantity * unit_cost for entries inside the period.
// Multiplication happens in decimal so SQLite's float columns do not leak rounding.
func (r *GormWasteEntryRepository) GetWasteCostForPeriod(ctx context.Context, period inventory.Period) (decimal.Decimal, error) {
	var rows []models.WasteEntryModel
	if err := r.periodScope(ctx, period).
		Select("quantity", "unit_cost").
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Quantity.Mul(row.UnitCost))
	}
	return valueobject.RoundMoney(total), nil
}

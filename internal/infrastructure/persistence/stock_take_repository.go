package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockTakeSessionRepository implements inventory.StockTakeSessionRepository using GORM
type GormStockTakeSessionRepository struct {
	db *gorm.DB
}

// NewGormStockTakeSessionRepository creates a new GormStockTakeSessionRepository
func NewGormStockTakeSessionRepository(db *gorm.DB) *GormStockTakeSessionRepository {
	return &GormStockTakeSessionRepository{db: db}
}

// FindByID finds a session by its ID
func (r *GormStockTakeSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTakeSession, error) {
	var model models.StockTakeSessionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists sessions matching the filter
func (r *GormStockTakeSessionRepository) FindAll(ctx context.Context, filter inventory.StockTakeFilter) ([]*inventory.StockTakeSession, error) {
	var rows []models.StockTakeSessionModel
	query := r.applyFilter(r.scoped(ctx, filter), filter.Filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	sessions := make([]*inventory.StockTakeSession, len(rows))
	for i := range rows {
		sessions[i] = rows[i].ToDomain()
	}
	return sessions, nil
}

// Count counts sessions matching the filter
func (r *GormStockTakeSessionRepository) Count(ctx context.Context, filter inventory.StockTakeFilter) (int64, error) {
	var count int64
	if err := r.scoped(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a session without a version check
func (r *GormStockTakeSessionRepository) Save(ctx context.Context, session *inventory.StockTakeSession) error {
	return r.db.WithContext(ctx).Save(models.StockTakeSessionModelFromDomain(session)).Error
}

// SaveWithLock updates the session only when the stored version equals expectedVersion
func (r *GormStockTakeSessionRepository) SaveWithLock(ctx context.Context, session *inventory.StockTakeSession, expectedVersion int) error {
	model := models.StockTakeSessionModelFromDomain(session)
	result := r.db.WithContext(ctx).
		Model(&models.StockTakeSessionModel{}).
		Where("id = ? AND version = ?", session.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormStockTakeSessionRepository) scoped(ctx context.Context, filter inventory.StockTakeFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.StockTakeSessionModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	return query
}

// applyFilter applies ordering and pagination
func (r *GormStockTakeSessionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	return query.Scopes(stockTakeSort.page(filter))
}

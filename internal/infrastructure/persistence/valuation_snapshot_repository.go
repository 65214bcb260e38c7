package persistence

import (
	"context"
	"errors"

	"github.com/shopkeeper/backend/internal/domain/report"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormValuationSnapshotRepository implements report.ValuationSnapshotRepository using GORM
type GormValuationSnapshotRepository struct {
	db *gorm.DB
}

// NewGormValuationSnapshotRepository creates a new GormValuationSnapshotRepository
func NewGormValuationSnapshotRepository(db *gorm.DB) *GormValuationSnapshotRepository {
	return &GormValuationSnapshotRepository{db: db}
}

// Save stores a snapshot
func (r *GormValuationSnapshotRepository) Save(ctx context.Context, snapshot *report.ValuationSnapshot) error {
	return r.db.WithContext(ctx).Create(models.ValuationSnapshotModelFromDomain(snapshot)).Error
}

// FindLatestByPeriod returns the most recent snapshot for a period label
func (r *GormValuationSnapshotRepository) FindLatestByPeriod(ctx context.Context, periodLabel string) (*report.ValuationSnapshot, error) {
	var model models.ValuationSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("period_label = ?", periodLabel).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists snapshots, newest first
func (r *GormValuationSnapshotRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*report.ValuationSnapshot, error) {
	var rows []models.ValuationSnapshotModel
	if err := r.db.WithContext(ctx).
		Scopes(snapshotSort.page(filter)).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	snapshots := make([]*report.ValuationSnapshot, len(rows))
	for i := range rows {
		snapshots[i] = rows[i].ToDomain()
	}
	return snapshots, nil
}

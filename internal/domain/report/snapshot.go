package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
)

// SnapshotSource records what produced a valuation snapshot
type SnapshotSource string

const (
	SnapshotSourceManual    SnapshotSource = "MANUAL"
	SnapshotSourceScheduled SnapshotSource = "SCHEDULED"
)

// ValuationSnapshot is a persisted valuation report
type ValuationSnapshot struct {
	ID        uuid.UUID
	Source    SnapshotSource
	Report    *ValuationReport
	CreatedAt time.Time
}

// NewValuationSnapshot wraps a computed report for persistence
func NewValuationSnapshot(r *ValuationReport, source SnapshotSource) (*ValuationSnapshot, error) {
	if r == nil {
		return nil, shared.NewValidationError("Valuation report is required")
	}
	if source == "" {
		source = SnapshotSourceManual
	}
	return &ValuationSnapshot{
		ID:        uuid.New(),
		Source:    source,
		Report:    r,
		CreatedAt: time.Now(),
	}, nil
}

// ValuationSnapshotRepository defines the interface for valuation snapshot persistence
type ValuationSnapshotRepository interface {
	// Save stores a snapshot
	Save(ctx context.Context, snapshot *ValuationSnapshot) error

	// FindLatestByPeriod returns the most recent snapshot for a period label
	FindLatestByPeriod(ctx context.Context, periodLabel string) (*ValuationSnapshot, error)

	// FindAll lists snapshots, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]*ValuationSnapshot, error)
}

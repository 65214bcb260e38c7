package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
)

// StockTakeFilter narrows session listings
type StockTakeFilter struct {
	shared.Filter
	Status SessionStatus
	Type   StockTakeType
}

// StockTakeSessionRepository defines the interface for stock-take session persistence
type StockTakeSessionRepository interface {
	// FindByID finds a session by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockTakeSession, error)

	// FindAll lists sessions matching the filter, newest first
	FindAll(ctx context.Context, filter StockTakeFilter) ([]*StockTakeSession, error)

	// Count counts sessions matching the filter
	Count(ctx context.Context, filter StockTakeFilter) (int64, error)

	// Save creates or updates a session
	Save(ctx context.Context, session *StockTakeSession) error

	// SaveWithLock updates the session only if the stored version still equals
	// expectedVersion; otherwise it returns shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, session *StockTakeSession, expectedVersion int) error
}

// WasteEntryRepository defines the interface for waste entry persistence
type WasteEntryRepository interface {
	// Save records a waste entry
	Save(ctx context.Context, entry *WasteEntry) error

	// FindByPeriod lists entries whose OccurredAt falls inside the period
	FindByPeriod(ctx context.Context, period Period, filter shared.Filter) ([]WasteEntry, error)

	// CountByPeriod counts entries inside the period
	CountByPeriod(ctx context.Context, period Period) (int64, error)
}

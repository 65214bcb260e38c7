package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stockTakeFixture struct {
	repo      *MockSessionRepository
	store     *fakeStore
	locker    *cache.InMemoryLocker
	publisher *MockEventPublisher
	service   *StockTakingService
	flour     uuid.UUID
	sugar     uuid.UUID
	salt      uuid.UUID
}

func newStockTakeFixture() *stockTakeFixture {
	f := &stockTakeFixture{
		repo:      new(MockSessionRepository),
		store:     newFakeStore(),
		locker:    cache.NewInMemoryLocker(),
		publisher: NewMockEventPublisher(),
		flour:     uuid.New(),
		sugar:     uuid.New(),
		salt:      uuid.New(),
	}
	f.store.put(f.flour, "20", "1.25")
	f.store.put(f.sugar, "5", "2")
	f.store.put(f.salt, "3", "0.50")
	f.service = NewStockTakingService(f.repo, f.store, f.locker,
		WithEventPublisher(f.publisher),
		WithLockTTL(time.Minute),
	)
	return f
}

// countedSession returns a session over flour, sugar and salt where salt was never counted
func (f *stockTakeFixture) countedSession(t *testing.T, stType inventory.StockTakeType) *inventory.StockTakeSession {
	t.Helper()
	st, err := inventory.NewStockTakeSession(stType, []uuid.UUID{f.flour, f.sugar, f.salt}, "tester")
	require.NoError(t, err)
	require.NoError(t, st.RecordCount(f.flour, decimal.NewFromInt(18)))
	require.NoError(t, st.RecordCount(f.sugar, decimal.NewFromInt(7)))
	st.ClearDomainEvents()
	return st
}

func TestStockTakingService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("saves session and publishes created event", func(t *testing.T) {
		f := newStockTakeFixture()
		f.repo.On("Save", ctx, mock.AnythingOfType("*inventory.StockTakeSession")).Return(nil)

		resp, err := f.service.Create(ctx, CreateStockTakeRequest{
			Type:       inventory.StockTakeTypeMonthly,
			ProductIDs: []uuid.UUID{f.flour, f.sugar, f.flour},
			CreatedBy:  "alice",
			Note:       "month end",
		})

		require.NoError(t, err)
		assert.Equal(t, inventory.SessionStatusOpen, resp.Status)
		assert.Equal(t, []uuid.UUID{f.flour, f.sugar}, resp.ProductIDs)
		assert.Equal(t, "month end", resp.Note)
		assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeStockTakeCreated), 1)
		f.repo.AssertExpectations(t)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		f := newStockTakeFixture()

		_, err := f.service.Create(ctx, CreateStockTakeRequest{Type: "DAILY"})

		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestStockTakingService_RecordCounts(t *testing.T) {
	ctx := context.Background()

	t.Run("applies batch and saves against loaded version", func(t *testing.T) {
		f := newStockTakeFixture()
		st, err := inventory.NewStockTakeSession(inventory.StockTakeTypeWeekly, []uuid.UUID{f.flour}, "")
		require.NoError(t, err)
		st.ClearDomainEvents()
		loaded := st.GetVersion()
		extra := uuid.New()

		f.repo.On("FindByID", ctx, st.ID).Return(st, nil)
		f.repo.On("SaveWithLock", ctx, st, loaded).Return(nil)

		resp, err := f.service.RecordCounts(ctx, st.ID, RecordCountsRequest{Counts: []RecordCountRequest{
			{ProductID: f.flour, Quantity: decimal.NewFromInt(4)},
			{ProductID: extra, Quantity: decimal.NewFromInt(2)},
			{ProductID: f.flour, Quantity: decimal.NewFromInt(6)},
		}})

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(6).Equal(st.CountedQuantity(f.flour)))
		assert.Contains(t, resp.ProductIDs, extra)
		assert.Empty(t, resp.UncountedProducts)
		assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeStockTakeCountRecord), 3)
		f.repo.AssertExpectations(t)
	})

	t.Run("negative count saves nothing", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeMonthly)
		f.repo.On("FindByID", ctx, st.ID).Return(st, nil)

		_, err := f.service.RecordCount(ctx, st.ID, RecordCountRequest{ProductID: f.salt, Quantity: decimal.NewFromInt(-1)})

		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
		f.repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("version conflict is surfaced", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeMonthly)
		f.repo.On("FindByID", ctx, st.ID).Return(st, nil)
		f.repo.On("SaveWithLock", ctx, st, mock.AnythingOfType("int")).Return(shared.ErrConcurrencyConflict)

		_, err := f.service.RecordCount(ctx, st.ID, RecordCountRequest{ProductID: f.salt, Quantity: decimal.NewFromInt(3)})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Zero(t, f.publisher.Count())
	})
}

func TestStockTakingService_Finalize(t *testing.T) {
	ctx := context.Background()

	t.Run("classifies counts and treats uncounted products as zero", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeMonthly)
		loaded := st.GetVersion()
		f.repo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		f.repo.On("SaveWithLock", mock.Anything, st, loaded).Return(nil)

		report, err := f.service.Finalize(ctx, st.ID)

		require.NoError(t, err)
		assert.Equal(t, inventory.SessionStatusFinalized, st.Status)
		assert.Equal(t, 3, report.TotalProducts)
		assert.Len(t, report.Understock, 2)
		assert.Len(t, report.Overstock, 1)
		assert.True(t, decimal.RequireFromString("4.00").Equal(report.ShrinkageValue), report.ShrinkageValue.String())
		assert.True(t, decimal.RequireFromString("4.00").Equal(report.OverstockValue))
		assert.True(t, report.NetFinancialImpact.IsZero())
		assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeStockTakeFinalized), 1)
		assert.Zero(t, f.locker.Size(), "lease must be released")
		f.repo.AssertExpectations(t)
	})

	t.Run("store failure keeps session open", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeMonthly)
		f.store.failRead(f.sugar, errors.New("connection reset"))
		f.repo.On("FindByID", mock.Anything, st.ID).Return(st, nil)

		_, err := f.service.Finalize(ctx, st.ID)

		require.Error(t, err)
		assert.True(t, shared.IsDependencyError(err))
		assert.Equal(t, inventory.SessionStatusOpen, st.Status)
		assert.Nil(t, st.Report)
		f.repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("held lock reports busy without loading", func(t *testing.T) {
		f := newStockTakeFixture()
		id := uuid.New()
		lease, err := f.locker.TryLock(ctx, lockKey(id), time.Minute)
		require.NoError(t, err)
		defer func() { _ = lease.Release(ctx) }()

		_, err = f.service.Finalize(ctx, id)

		assert.ErrorIs(t, err, ErrSessionBusy)
		assert.True(t, shared.HasCode(err, shared.CodeConcurrencyConflict))
		f.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("finalizing twice is an invalid state", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeWeekly)
		f.repo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		f.repo.On("SaveWithLock", mock.Anything, st, mock.AnythingOfType("int")).Return(nil)

		_, err := f.service.Finalize(ctx, st.ID)
		require.NoError(t, err)
		_, err = f.service.Finalize(ctx, st.ID)

		assert.True(t, shared.IsInvalidState(err))
	})
}

func TestStockTakingService_Commit(t *testing.T) {
	ctx := context.Background()

	t.Run("monthly commit retries only failed lines", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeMonthly)
		f.repo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		f.repo.On("SaveWithLock", mock.Anything, st, mock.AnythingOfType("int")).Return(nil)
		_, err := f.service.Finalize(ctx, st.ID)
		require.NoError(t, err)

		f.store.failWrite(f.sugar, errors.New("timeout"))
		first, err := f.service.Commit(ctx, st.ID, CommitStockTakeRequest{})
		require.NoError(t, err)
		assert.Equal(t, 2, first.AppliedCount)
		require.Len(t, first.FailedLines, 1)
		assert.Equal(t, f.sugar, first.FailedLines[0].ProductID)
		assert.Equal(t, inventory.SessionStatusFinalized, st.Status)
		assert.True(t, decimal.NewFromInt(18).Equal(f.store.quantity(f.flour)))
		assert.True(t, f.store.quantity(f.salt).IsZero())
		assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeStockTakeCommitFailed), 1)

		f.store.failWrite(f.sugar, nil)
		second, err := f.service.Commit(ctx, st.ID, CommitStockTakeRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, second.AppliedCount)
		assert.Equal(t, 2, second.AlreadyApplied)
		assert.False(t, second.HasFailures())
		assert.Equal(t, inventory.SessionStatusApplied, st.Status)
		assert.True(t, decimal.NewFromInt(7).Equal(f.store.quantity(f.sugar)))

		writes := f.store.writeCount()
		replay, err := f.service.Commit(ctx, st.ID, CommitStockTakeRequest{})
		require.NoError(t, err)
		assert.True(t, replay.Replayed)
		assert.Equal(t, writes, f.store.writeCount())
		assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeStockTakeApplied), 1)
	})

	t.Run("weekly commit requires acknowledgement and never writes", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeWeekly)
		f.repo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		f.repo.On("SaveWithLock", mock.Anything, st, mock.AnythingOfType("int")).Return(nil)
		_, err := f.service.Finalize(ctx, st.ID)
		require.NoError(t, err)

		_, err = f.service.Commit(ctx, st.ID, CommitStockTakeRequest{})
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))

		result, err := f.service.Commit(ctx, st.ID, CommitStockTakeRequest{AcknowledgeNoInventoryChanges: true})
		require.NoError(t, err)
		assert.False(t, result.InventoryUpdated)
		assert.Zero(t, f.store.writeCount())
		assert.True(t, decimal.NewFromInt(20).Equal(f.store.quantity(f.flour)))
		assert.Equal(t, inventory.SessionStatusApplied, st.Status)
	})

	t.Run("open session cannot be committed", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeMonthly)
		f.repo.On("FindByID", mock.Anything, st.ID).Return(st, nil)

		_, err := f.service.Commit(ctx, st.ID, CommitStockTakeRequest{})

		assert.True(t, shared.IsInvalidState(err))
		assert.Zero(t, f.store.writeCount())
	})

	t.Run("missing session", func(t *testing.T) {
		f := newStockTakeFixture()
		id := uuid.New()
		f.repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.Commit(ctx, id, CommitStockTakeRequest{})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Zero(t, f.locker.Size())
	})
}

func TestStockTakingService_Abandon(t *testing.T) {
	ctx := context.Background()

	t.Run("abandons open session", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeMonthly)
		f.repo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		f.repo.On("SaveWithLock", mock.Anything, st, st.GetVersion()).Return(nil)

		resp, err := f.service.Abandon(ctx, st.ID, AbandonStockTakeRequest{Reason: "wrong shelf"})

		require.NoError(t, err)
		assert.Equal(t, inventory.SessionStatusAbandoned, resp.Status)
		assert.Equal(t, "wrong shelf", resp.AbandonReason)
		assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeStockTakeAbandoned), 1)
	})

	t.Run("cannot abandon after partial commit", func(t *testing.T) {
		f := newStockTakeFixture()
		st := f.countedSession(t, inventory.StockTakeTypeMonthly)
		f.repo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		f.repo.On("SaveWithLock", mock.Anything, st, mock.AnythingOfType("int")).Return(nil)
		_, err := f.service.Finalize(ctx, st.ID)
		require.NoError(t, err)
		f.store.failWrite(f.flour, errors.New("timeout"))
		_, err = f.service.Commit(ctx, st.ID, CommitStockTakeRequest{})
		require.NoError(t, err)

		_, err = f.service.Abandon(ctx, st.ID, AbandonStockTakeRequest{})

		assert.True(t, shared.IsInvalidState(err))
		assert.Equal(t, inventory.SessionStatusFinalized, st.Status)
	})
}

func TestStockTakingService_List(t *testing.T) {
	ctx := context.Background()
	f := newStockTakeFixture()
	st := f.countedSession(t, inventory.StockTakeTypeMonthly)

	expected := inventory.StockTakeFilter{
		Filter: shared.Filter{Page: 2, PageSize: 10, OrderBy: "created_at", OrderDir: "desc"},
		Status: inventory.SessionStatusOpen,
	}
	f.repo.On("Count", ctx, expected).Return(int64(11), nil)
	f.repo.On("FindAll", ctx, expected).Return([]*inventory.StockTakeSession{st}, nil)

	items, total, err := f.service.List(ctx, StockTakeListFilter{
		Status:   inventory.SessionStatusOpen,
		Page:     2,
		PageSize: 10,
		OrderDir: "desc",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].TotalProducts)
	assert.Equal(t, 2, items[0].CountedCount)
}

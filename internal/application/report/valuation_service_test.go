package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/report"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockInventoryStore struct {
	mock.Mock
}

func (m *MockInventoryStore) GetQuantity(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInventoryStore) GetCost(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInventoryStore) GetPrice(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInventoryStore) SetQuantity(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockInventoryStore) GetProduct(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

func (m *MockInventoryStore) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Product), args.Error(1)
}

type MockWasteLedger struct {
	mock.Mock
}

func (m *MockWasteLedger) GetWasteCostForPeriod(ctx context.Context, period inventory.Period) (decimal.Decimal, error) {
	args := m.Called(ctx, period)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snapshot *report.ValuationSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) FindLatestByPeriod(ctx context.Context, periodLabel string) (*report.ValuationSnapshot, error) {
	args := m.Called(ctx, periodLabel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ValuationSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*report.ValuationSnapshot, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.ValuationSnapshot), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// shelf is two products: bread is healthy, eggs are oversold
func shelf() []inventory.Product {
	return []inventory.Product{
		{ID: uuid.New(), SKU: "BREAD", SystemQuantity: dec("10"), CostPrice: dec("1.20"), SellingPrice: dec("2.00")},
		{ID: uuid.New(), SKU: "EGGS", SystemQuantity: dec("-4"), CostPrice: dec("0.30"), SellingPrice: dec("0.50")},
	}
}

func TestValuationService_Compute(t *testing.T) {
	ctx := context.Background()
	period := inventory.MonthPeriod(2026, time.September, time.UTC)

	t.Run("adjusts gross profit by period waste", func(t *testing.T) {
		store := new(MockInventoryStore)
		ledger := new(MockWasteLedger)
		store.On("ListProducts", mock.Anything).Return(shelf(), nil)
		ledger.On("GetWasteCostForPeriod", mock.Anything, period).Return(dec("1.50"), nil)
		svc := NewValuationService(store, ledger, nil, nil, nil)

		r, err := svc.Compute(ctx, period)

		require.NoError(t, err)
		assert.Equal(t, "2026-09", r.PeriodLabel)
		assert.Equal(t, 2, r.TotalProducts)
		assert.True(t, dec("12.00").Equal(r.TotalStockValue), r.TotalStockValue.String())
		assert.True(t, dec("8.00").Equal(r.TotalGrossProfit), r.TotalGrossProfit.String())
		assert.True(t, dec("6.50").Equal(r.AdjustedGrossProfit), r.AdjustedGrossProfit.String())
		assert.Equal(t, 1, r.OversoldProducts)
		assert.False(t, r.WasteDegraded)
		store.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ledger failure degrades to zero waste with a warning", func(t *testing.T) {
		store := new(MockInventoryStore)
		ledger := new(MockWasteLedger)
		store.On("ListProducts", mock.Anything).Return(shelf(), nil)
		ledger.On("GetWasteCostForPeriod", mock.Anything, period).Return(decimal.Zero, errors.New("ledger offline"))
		core, logs := observer.New(zap.WarnLevel)
		svc := NewValuationService(store, ledger, nil, nil, zap.New(core))

		r, err := svc.Compute(ctx, period)

		require.NoError(t, err)
		assert.True(t, r.WasteDegraded)
		assert.True(t, r.WasteCost.IsZero())
		assert.True(t, r.TotalGrossProfit.Equal(r.AdjustedGrossProfit))
		assert.Equal(t, 1, logs.FilterMessageSnippet("waste ledger unavailable").Len())
	})

	t.Run("negative ledger value degrades to zero waste", func(t *testing.T) {
		store := new(MockInventoryStore)
		ledger := new(MockWasteLedger)
		store.On("ListProducts", mock.Anything).Return(shelf(), nil)
		ledger.On("GetWasteCostForPeriod", mock.Anything, period).Return(dec("-3.00"), nil)
		core, logs := observer.New(zap.WarnLevel)
		svc := NewValuationService(store, ledger, nil, nil, zap.New(core))

		r, err := svc.Compute(ctx, period)

		require.NoError(t, err)
		assert.True(t, r.WasteDegraded)
		assert.True(t, r.WasteCost.IsZero())
		assert.True(t, dec("8.00").Equal(r.AdjustedGrossProfit), r.AdjustedGrossProfit.String())
		assert.Equal(t, 1, logs.FilterMessageSnippet("negative cost").Len())
	})

	t.Run("store failure fails the report", func(t *testing.T) {
		store := new(MockInventoryStore)
		ledger := new(MockWasteLedger)
		store.On("ListProducts", mock.Anything).Return(nil, errors.New("connection refused"))
		ledger.On("GetWasteCostForPeriod", mock.Anything, period).Return(decimal.Zero, nil).Maybe()
		svc := NewValuationService(store, ledger, nil, nil, nil)

		_, err := svc.Compute(ctx, period)

		require.Error(t, err)
		assert.True(t, shared.IsDependencyError(err))
	})

	t.Run("empty catalogue values to zero", func(t *testing.T) {
		store := new(MockInventoryStore)
		ledger := new(MockWasteLedger)
		store.On("ListProducts", mock.Anything).Return([]inventory.Product{}, nil)
		ledger.On("GetWasteCostForPeriod", mock.Anything, period).Return(decimal.Zero, nil)
		svc := NewValuationService(store, ledger, nil, nil, nil)

		r, err := svc.Compute(ctx, period)

		require.NoError(t, err)
		assert.Zero(t, r.TotalProducts)
		assert.True(t, r.NetProfitMarginPercent.IsZero())
	})
}

func TestValuationService_Snapshots(t *testing.T) {
	ctx := context.Background()
	period := inventory.MonthPeriod(2026, time.September, time.UTC)

	t.Run("take snapshot persists the computed report", func(t *testing.T) {
		store := new(MockInventoryStore)
		ledger := new(MockWasteLedger)
		repo := new(MockSnapshotRepository)
		store.On("ListProducts", mock.Anything).Return(shelf(), nil)
		ledger.On("GetWasteCostForPeriod", mock.Anything, period).Return(decimal.Zero, nil)
		repo.On("Save", ctx, mock.MatchedBy(func(s *report.ValuationSnapshot) bool {
			return s.Source == report.SnapshotSourceScheduled && s.Report.PeriodLabel == "2026-09"
		})).Return(nil)
		svc := NewValuationService(store, ledger, repo, nil, nil)

		snap, err := svc.TakeSnapshot(ctx, period, report.SnapshotSourceScheduled)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, snap.ID)
		repo.AssertExpectations(t)
	})

	t.Run("query with save stores a manual snapshot", func(t *testing.T) {
		store := new(MockInventoryStore)
		ledger := new(MockWasteLedger)
		repo := new(MockSnapshotRepository)
		store.On("ListProducts", mock.Anything).Return(shelf(), nil)
		ledger.On("GetWasteCostForPeriod", mock.Anything, period).Return(decimal.Zero, nil)
		repo.On("Save", ctx, mock.MatchedBy(func(s *report.ValuationSnapshot) bool {
			return s.Source == report.SnapshotSourceManual
		})).Return(nil)
		svc := NewValuationService(store, ledger, repo, nil, nil)

		r, err := svc.ComputeForQuery(ctx, ValuationQuery{Period: "2026-09", Save: true})

		require.NoError(t, err)
		assert.Equal(t, "2026-09", r.PeriodLabel)
		repo.AssertExpectations(t)
	})

	t.Run("snapshots unavailable without a repository", func(t *testing.T) {
		svc := NewValuationService(new(MockInventoryStore), new(MockWasteLedger), nil, nil, nil)

		_, err := svc.TakeSnapshot(ctx, period, report.SnapshotSourceManual)
		assert.True(t, shared.IsInvalidState(err))

		list, err := svc.ListSnapshots(ctx, SnapshotListFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("latest snapshot validates the period label", func(t *testing.T) {
		repo := new(MockSnapshotRepository)
		svc := NewValuationService(new(MockInventoryStore), new(MockWasteLedger), repo, nil, nil)

		_, err := svc.LatestSnapshot(ctx, "09/2026")
		assert.True(t, shared.IsValidationError(err))

		repo.On("FindLatestByPeriod", ctx, "2026-08").Return(nil, shared.ErrNotFound)
		_, err = svc.LatestSnapshot(ctx, "2026-08")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list maps snapshots newest first", func(t *testing.T) {
		repo := new(MockSnapshotRepository)
		svc := NewValuationService(new(MockInventoryStore), new(MockWasteLedger), repo, nil, nil)
		snap, err := report.NewValuationSnapshot(&report.ValuationReport{PeriodLabel: "2026-08"}, report.SnapshotSourceScheduled)
		require.NoError(t, err)
		repo.On("FindAll", ctx, shared.Filter{Page: 1, PageSize: 5, OrderBy: "created_at", OrderDir: "desc"}).
			Return([]*report.ValuationSnapshot{snap}, nil)

		list, err := svc.ListSnapshots(ctx, SnapshotListFilter{Page: 1, PageSize: 5})

		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, snap.ID, list[0].ID)
	})
}

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/report"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormValuationSnapshotRepository(t *testing.T) {
	repo := NewGormValuationSnapshotRepository(newSQLiteDB(t))
	ctx := context.Background()
	period := inventory.MonthPeriod(2026, time.September, time.UTC)

	items := []report.ValuationInput{{
		SKU:          "RICE-5KG",
		Quantity:     dec("10"),
		UnitCost:     dec("5"),
		SellingPrice: dec("8"),
	}}
	r, err := report.ComputeValuation(items, dec("20"), period)
	require.NoError(t, err)

	first, err := report.NewValuationSnapshot(r, report.SnapshotSourceScheduled)
	require.NoError(t, err)
	first.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, first))

	second, err := report.NewValuationSnapshot(r, report.SnapshotSourceManual)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	latest, err := repo.FindLatestByPeriod(ctx, "2026-09")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, report.SnapshotSourceManual, latest.Source)
	require.NotNil(t, latest.Report)
	assert.True(t, latest.Report.TotalStockValue.Equal(dec("50")), "got %s", latest.Report.TotalStockValue)
	assert.True(t, latest.Report.WasteCost.Equal(dec("20")))

	all, err := repo.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	_, err = repo.FindLatestByPeriod(ctx, "2020-01")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

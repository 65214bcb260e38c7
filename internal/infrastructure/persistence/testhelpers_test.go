package persistence

import (
	"context"
	"testing"

	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newSQLiteDB opens a migrated in-memory database closed at test cleanup
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		SQLitePath:   ":memory:",
		MaxOpenConns: 1,
	}, Options{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, store *GormInventoryStore, sku string, qty, cost, price string) *inventory.Product {
	t.Helper()
	p, err := inventory.NewProduct(sku, "Product "+sku, dec(qty), dec(cost), dec(price), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), p))
	return p
}

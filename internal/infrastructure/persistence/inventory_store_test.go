package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInventoryStore_Reads(t *testing.T) {
	store := NewGormInventoryStore(newSQLiteDB(t))
	ctx := context.Background()
	p := seedProduct(t, store, "MILK-1L", "12", "0.85", "1.49")

	qty, err := store.GetQuantity(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("12")), "got %s", qty)

	cost, err := store.GetCost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("0.85")), "got %s", cost)

	price, err := store.GetPrice(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("1.49")), "got %s", price)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "MILK-1L", got.SKU)
}

func TestGormInventoryStore_NotFound(t *testing.T) {
	store := NewGormInventoryStore(newSQLiteDB(t))
	ctx := context.Background()
	missing := uuid.New()

	_, err := store.GetQuantity(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = store.GetProduct(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = store.SetQuantity(ctx, missing, dec("1"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormInventoryStore_SetQuantity(t *testing.T) {
	store := NewGormInventoryStore(newSQLiteDB(t))
	ctx := context.Background()
	p := seedProduct(t, store, "BREAD", "5", "1.20", "2.50")

	t.Run("accepts negative quantities", func(t *testing.T) {
		require.NoError(t, store.SetQuantity(ctx, p.ID, dec("-8")))
		qty, err := store.GetQuantity(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(dec("-8")), "got %s", qty)
	})

	t.Run("repeating the same value is a no-op", func(t *testing.T) {
		require.NoError(t, store.SetQuantity(ctx, p.ID, dec("4")))
		require.NoError(t, store.SetQuantity(ctx, p.ID, dec("4")))
		qty, err := store.GetQuantity(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(dec("4")), "got %s", qty)
	})
}

func TestGormInventoryStore_ListProducts(t *testing.T) {
	store := NewGormInventoryStore(newSQLiteDB(t))
	ctx := context.Background()
	seedProduct(t, store, "B-ITEM", "1", "1", "2")
	seedProduct(t, store, "A-ITEM", "2", "1", "2")

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A-ITEM", products[0].SKU)
	assert.Equal(t, "B-ITEM", products[1].SKU)
}

func TestGormInventoryStore_SaveRejectsInvalid(t *testing.T) {
	store := NewGormInventoryStore(newSQLiteDB(t))
	p := seedProduct(t, store, "EGGS", "1", "1", "2")
	p.CostPrice = dec("-1")

	err := store.Save(context.Background(), p)
	assert.True(t, shared.IsValidationError(err))
}

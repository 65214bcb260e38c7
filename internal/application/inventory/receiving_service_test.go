package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveLine(id uuid.UUID, qty, cost string) ReceiveLineRequest {
	return ReceiveLineRequest{
		ProductID:        id,
		QuantityReceived: decimal.RequireFromString(qty),
		UnitCost:         decimal.RequireFromString(cost),
	}
}

func TestReceivingService_Receive(t *testing.T) {
	ctx := context.Background()

	t.Run("reports oversell transitions per line", func(t *testing.T) {
		store := newFakeStore()
		publisher := NewMockEventPublisher()
		svc := NewReceivingService(store, publisher, nil)

		crossed, exact, still, normal := uuid.New(), uuid.New(), uuid.New(), uuid.New()
		store.put(crossed, "-3", "2")
		store.put(exact, "-4", "1")
		store.put(still, "-10", "1")
		store.put(normal, "6", "1")

		resp, err := svc.Receive(ctx, ReceiveStockRequest{Lines: []ReceiveLineRequest{
			receiveLine(crossed, "5", "2"),
			receiveLine(exact, "4", "1"),
			receiveLine(still, "3", "1"),
			receiveLine(normal, "2", "1.50"),
		}})

		require.NoError(t, err)
		require.Len(t, resp.Lines, 4)
		assert.Equal(t, 4, resp.AppliedCount)
		assert.Equal(t, 2, resp.OversellsCleared)

		first := resp.Lines[0]
		assert.True(t, first.Outcome.CrossedToPositive)
		assert.True(t, decimal.NewFromInt(3).Equal(first.Outcome.OversellAmount))
		assert.True(t, decimal.RequireFromString("4.00").Equal(first.Outcome.InventoryValueChange))
		assert.Len(t, first.Notices, 2)
		assert.True(t, decimal.NewFromInt(2).Equal(store.quantity(crossed)))

		second := resp.Lines[1]
		assert.True(t, second.Outcome.OversellCleared)
		assert.False(t, second.Outcome.CrossedToPositive)
		assert.True(t, store.quantity(exact).IsZero())

		third := resp.Lines[2]
		assert.True(t, third.Outcome.StillOversold())
		assert.True(t, decimal.NewFromInt(-7).Equal(store.quantity(still)))
		assert.Len(t, third.Notices, 1)

		assert.Empty(t, resp.Lines[3].Notices)
		assert.True(t, decimal.RequireFromString("3.00").Equal(resp.Lines[3].Outcome.InventoryValueChange))

		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeStockReceived), 4)
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeOversellCleared), 2)
	})

	t.Run("invalid line rejects the whole receipt before any write", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReceivingService(store, nil, nil)
		a, b := uuid.New(), uuid.New()
		store.put(a, "1", "1")
		store.put(b, "1", "1")

		_, err := svc.Receive(ctx, ReceiveStockRequest{Lines: []ReceiveLineRequest{
			receiveLine(a, "2", "1"),
			receiveLine(b, "0", "1"),
		}})

		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
		assert.Contains(t, err.Error(), "line 2")
		assert.Zero(t, store.writeCount())
	})

	t.Run("failed line does not roll back earlier lines", func(t *testing.T) {
		store := newFakeStore()
		publisher := NewMockEventPublisher()
		svc := NewReceivingService(store, publisher, nil)
		ok, broken, missing := uuid.New(), uuid.New(), uuid.New()
		store.put(ok, "1", "1")
		store.put(broken, "1", "1")
		store.failWrite(broken, errors.New("store unavailable"))

		resp, err := svc.Receive(ctx, ReceiveStockRequest{Lines: []ReceiveLineRequest{
			receiveLine(ok, "2", "1"),
			receiveLine(broken, "2", "1"),
			receiveLine(missing, "2", "1"),
		}})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.AppliedCount)
		assert.Equal(t, 2, resp.FailedCount)
		assert.True(t, resp.Lines[0].Applied)
		assert.False(t, resp.Lines[1].Applied)
		assert.Contains(t, resp.Lines[1].Error, "store unavailable")
		assert.False(t, resp.Lines[2].Applied)
		assert.True(t, decimal.NewFromInt(3).Equal(store.quantity(ok)))
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeStockReceived), 1)
	})

	t.Run("empty receipt", func(t *testing.T) {
		svc := NewReceivingService(newFakeStore(), nil, nil)

		_, err := svc.Receive(ctx, ReceiveStockRequest{})

		assert.True(t, shared.IsValidationError(err))
	})
}

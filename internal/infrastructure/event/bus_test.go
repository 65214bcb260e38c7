package event

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func stockTakeEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "StockTake", uuid.New())
	return &e
}

// recorder collects the events it receives and optionally fails each one
type recorder struct {
	mu   sync.Mutex
	seen []string
	err  error
}

func (r *recorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, event.EventType())
	return r.err
}

func (r *recorder) EventTypes() []string { return nil }

func (r *recorder) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.seen)
}

func TestInMemoryEventBus_Delivery(t *testing.T) {
	finalized := inventory.EventTypeStockTakeFinalized
	abandoned := inventory.EventTypeStockTakeAbandoned

	tests := []struct {
		name      string
		subscribe []string
		publish   []string
		want      []string
	}{
		{"single event", []string{finalized}, []string{finalized}, []string{finalized}},
		{"batch keeps order", []string{finalized, abandoned}, []string{abandoned, finalized}, []string{abandoned, finalized}},
		{"unrelated type skipped", []string{abandoned}, []string{finalized}, nil},
		{"no types receives everything", nil, []string{finalized, inventory.EventTypeWasteRecorded}, []string{finalized, inventory.EventTypeWasteRecorded}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewInMemoryEventBus(zap.NewNop())
			r := &recorder{}
			bus.Subscribe(r, tt.subscribe...)

			events := make([]shared.DomainEvent, 0, len(tt.publish))
			for _, et := range tt.publish {
				events = append(events, stockTakeEvent(et))
			}
			require.NoError(t, bus.Publish(context.Background(), events...))

			assert.Equal(t, tt.want, r.received())
		})
	}
}

func TestInMemoryEventBus_SubscribeUsesHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := NewOversellMetricsHandler(nil)
	bus.Subscribe(handler)

	assert.Len(t, bus.registry.GetHandlers(inventory.EventTypeOversellCleared), 1)
	assert.Empty(t, bus.registry.GetHandlers(inventory.EventTypeStockReceived))
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))
	ctx := context.Background()

	failing := &recorder{err: errors.New("audit sink offline")}
	after := &recorder{}
	bus.Subscribe(failing, inventory.EventTypeStockTakeApplied)
	bus.Subscribe(panicHandler{}, inventory.EventTypeStockTakeApplied)
	bus.Subscribe(after, inventory.EventTypeStockTakeApplied)

	require.NoError(t, bus.Publish(ctx, stockTakeEvent(inventory.EventTypeStockTakeApplied)))

	assert.Len(t, failing.received(), 1)
	assert.Len(t, after.received(), 1)
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()
	r := &recorder{}
	bus.Subscribe(r, inventory.EventTypeStockTakeCreated)

	require.NoError(t, bus.Publish(ctx, stockTakeEvent(inventory.EventTypeStockTakeCreated)))
	bus.Unsubscribe(r)
	require.NoError(t, bus.Publish(ctx, stockTakeEvent(inventory.EventTypeStockTakeCreated)))

	assert.Len(t, r.received(), 1)
}

func TestInMemoryEventBus_StopAndRestart(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()
	r := &recorder{}
	bus.Subscribe(r)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))
	require.NoError(t, bus.Publish(ctx, stockTakeEvent(inventory.EventTypeStockTakeFinalized)))
	assert.Empty(t, r.received())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, stockTakeEvent(inventory.EventTypeStockTakeFinalized)))
	assert.Len(t, r.received(), 1)
}

func TestInMemoryEventBus_StopWaitsForInflight(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	bus.Subscribe(blockingHandler{started: started, release: release})

	go func() { _ = bus.Publish(ctx, stockTakeEvent(inventory.EventTypeStockTakeFinalized)) }()
	<-started

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Stop(short), context.DeadlineExceeded)

	close(release)
	long, cancel2 := context.WithTimeout(ctx, time.Second)
	defer cancel2()
	assert.NoError(t, bus.Stop(long))
}

type panicHandler struct{}

func (panicHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panicHandler) EventTypes() []string                            { return nil }

type blockingHandler struct {
	started chan struct{}
	release chan struct{}
}

func (h blockingHandler) Handle(context.Context, shared.DomainEvent) error {
	close(h.started)
	<-h.release
	return nil
}

func (h blockingHandler) EventTypes() []string { return nil }

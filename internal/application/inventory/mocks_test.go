package inventory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

func (m *MockEventPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// MockSessionRepository is a mock implementation of inventory.StockTakeSessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTakeSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockTakeSession), args.Error(1)
}

func (m *MockSessionRepository) FindAll(ctx context.Context, filter inventory.StockTakeFilter) ([]*inventory.StockTakeSession, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.StockTakeSession), args.Error(1)
}

func (m *MockSessionRepository) Count(ctx context.Context, filter inventory.StockTakeFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, session *inventory.StockTakeSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) SaveWithLock(ctx context.Context, session *inventory.StockTakeSession, expectedVersion int) error {
	args := m.Called(ctx, session, expectedVersion)
	return args.Error(0)
}

// MockWasteRepository is a mock implementation of inventory.WasteEntryRepository
type MockWasteRepository struct {
	mock.Mock
}

func (m *MockWasteRepository) Save(ctx context.Context, entry *inventory.WasteEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWasteRepository) FindByPeriod(ctx context.Context, period inventory.Period, filter shared.Filter) ([]inventory.WasteEntry, error) {
	args := m.Called(ctx, period, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.WasteEntry), args.Error(1)
}

func (m *MockWasteRepository) CountByPeriod(ctx context.Context, period inventory.Period) (int64, error) {
	args := m.Called(ctx, period)
	return args.Get(0).(int64), args.Error(1)
}

// fakeStore is an in-memory inventory store with injectable failures
type fakeStore struct {
	mu         sync.Mutex
	quantities map[uuid.UUID]decimal.Decimal
	costs      map[uuid.UUID]decimal.Decimal
	readErr    map[uuid.UUID]error
	writeErr   map[uuid.UUID]error
	writes     []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quantities: make(map[uuid.UUID]decimal.Decimal),
		costs:      make(map[uuid.UUID]decimal.Decimal),
		readErr:    make(map[uuid.UUID]error),
		writeErr:   make(map[uuid.UUID]error),
	}
}

func (f *fakeStore) put(id uuid.UUID, qty, cost string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quantities[id] = decimal.RequireFromString(qty)
	f.costs[id] = decimal.RequireFromString(cost)
}

func (f *fakeStore) quantity(id uuid.UUID) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quantities[id]
}

func (f *fakeStore) GetQuantity(_ context.Context, id uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.readErr[id]; err != nil {
		return decimal.Zero, err
	}
	q, ok := f.quantities[id]
	if !ok {
		return decimal.Zero, shared.ErrNotFound
	}
	return q, nil
}

func (f *fakeStore) GetCost(_ context.Context, id uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.readErr[id]; err != nil {
		return decimal.Zero, err
	}
	c, ok := f.costs[id]
	if !ok {
		return decimal.Zero, shared.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) GetPrice(_ context.Context, id uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeStore) SetQuantity(_ context.Context, id uuid.UUID, qty decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.writeErr[id]; err != nil {
		return err
	}
	f.quantities[id] = qty
	f.writes = append(f.writes, id)
	return nil
}

func (f *fakeStore) GetProduct(_ context.Context, id uuid.UUID) (*inventory.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quantities[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &inventory.Product{ID: id, SystemQuantity: q, CostPrice: f.costs[id]}, nil
}

func (f *fakeStore) ListProducts(_ context.Context) ([]inventory.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	products := make([]inventory.Product, 0, len(f.quantities))
	for id, q := range f.quantities {
		products = append(products, inventory.Product{ID: id, SystemQuantity: q, CostPrice: f.costs[id]})
	}
	return products, nil
}

func (f *fakeStore) failRead(id uuid.UUID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr[id] = err
}

func (f *fakeStore) failWrite(id uuid.UUID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.writeErr, id)
		return
	}
	f.writeErr[id] = err
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultSessionLockTTL bounds how long a crashed Finalize or Commit can block a session
const DefaultSessionLockTTL = 2 * time.Minute

// ErrSessionBusy is returned when another Finalize or Commit holds the session
var ErrSessionBusy = shared.NewDomainError(shared.CodeConcurrencyConflict, "Stock-take is being finalized or committed by another request")

// StockTakingService provides application services for stock-take sessions
type StockTakingService struct {
	repo     inventory.StockTakeSessionRepository
	store    inventory.InventoryStore
	locker   shared.Locker
	lockTTL  time.Duration
	eventBus shared.EventPublisher
	metrics  *telemetry.ReconciliationMetrics
	logger   *zap.Logger
}

// StockTakingOption configures a StockTakingService
type StockTakingOption func(*StockTakingService)

// WithLockTTL sets the session lock TTL
func WithLockTTL(ttl time.Duration) StockTakingOption {
	return func(s *StockTakingService) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithEventPublisher sets the publisher for session events
func WithEventPublisher(p shared.EventPublisher) StockTakingOption {
	return func(s *StockTakingService) {
		s.eventBus = p
	}
}

// WithMetrics sets the reconciliation metrics recorder
func WithMetrics(m *telemetry.ReconciliationMetrics) StockTakingOption {
	return func(s *StockTakingService) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) StockTakingOption {
	return func(s *StockTakingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStockTakingService creates a new StockTakingService
func NewStockTakingService(
	repo inventory.StockTakeSessionRepository,
	store inventory.InventoryStore,
	locker shared.Locker,
	opts ...StockTakingOption,
) *StockTakingService {
	s := &StockTakingService{
		repo:    repo,
		store:   store,
		locker:  locker,
		lockTTL: DefaultSessionLockTTL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===================== Query Methods =====================

// GetByID retrieves a session by ID
func (s *StockTakingService) GetByID(ctx context.Context, id uuid.UUID) (*StockTakeResponse, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToStockTakeResponse(st)
	return &response, nil
}

// List retrieves a paginated list of sessions
func (s *StockTakingService) List(ctx context.Context, filter StockTakeListFilter) ([]StockTakeListResponse, int64, error) {
	domainFilter := inventory.StockTakeFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: filter.OrderDir,
		},
		Status: filter.Status,
		Type:   filter.Type,
	}

	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	sessions, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToStockTakeListResponses(sessions), total, nil
}

// ===================== Command Methods =====================

// Create opens a new session
func (s *StockTakingService) Create(ctx context.Context, req CreateStockTakeRequest) (*StockTakeResponse, error) {
	st, err := inventory.NewStockTakeSession(req.Type, req.ProductIDs, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	if req.Note != "" {
		st.SetNote(req.Note)
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info("stock-take opened",
		zap.String("session_id", st.ID.String()),
		zap.String("type", st.Type.String()),
		zap.Int("products", len(st.ProductIDs)),
	)
	s.publishEvents(ctx, st)

	response := ToStockTakeResponse(st)
	return &response, nil
}

// RecordCount records the physical count of one product
func (s *StockTakingService) RecordCount(ctx context.Context, id uuid.UUID, req RecordCountRequest) (*StockTakeResponse, error) {
	return s.RecordCounts(ctx, id, RecordCountsRequest{Counts: []RecordCountRequest{req}})
}

// RecordCounts records a batch of counts. The batch is applied in order, so a
// product listed twice keeps its last count. Nothing is saved if any count is rejected.
func (s *StockTakingService) RecordCounts(ctx context.Context, id uuid.UUID, req RecordCountsRequest) (*StockTakeResponse, error) {
	if len(req.Counts) == 0 {
		return nil, shared.NewValidationError("At least one count is required")
	}

	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expectedVersion := st.GetVersion()

	for _, c := range req.Counts {
		if err := st.RecordCount(c.ProductID, c.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveWithLock(ctx, st, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, st)

	response := ToStockTakeResponse(st)
	return &response, nil
}

// Finalize reads system quantities and costs, classifies every product in scope
// and freezes the session. On a store failure the session stays open.
func (s *StockTakingService) Finalize(ctx context.Context, id uuid.UUID) (*inventory.ReconciliationReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_take", "finalize",
		telemetry.SpanAttrSessionID, id.String())
	defer span.End()

	lease, err := s.acquire(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer s.release(lease, id)

	started := time.Now()
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	expectedVersion := st.GetVersion()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrStockTakeType, st.Type.String(),
		telemetry.SpanAttrProductCount, len(st.ProductIDs),
	)

	uncounted := st.UncountedProducts()
	report, err := st.Finalize(ctx, s.store)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("stock-take finalize failed",
			zap.String("session_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, st, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if len(uncounted) > 0 {
		s.logger.Info("uncounted products treated as zero",
			zap.String("session_id", id.String()),
			zap.Int("uncounted", len(uncounted)),
		)
	}
	s.logger.Info("stock-take finalized",
		zap.String("session_id", id.String()),
		zap.Int("products", report.TotalProducts),
		zap.Int("overstock", len(report.Overstock)),
		zap.Int("understock", len(report.Understock)),
		zap.String("shrinkage_value", report.ShrinkageValue.StringFixed(2)),
	)
	s.metrics.RecordFinalized(ctx, st.Type.String(), len(report.Overstock), len(report.Understock), report.ShrinkageValue, time.Since(started))
	s.publishEvents(ctx, st)
	telemetry.SetOK(span)

	return report, nil
}

// Commit records the outcome of a finalized session. Monthly sessions write
// counted quantities to the inventory store; weekly sessions require an
// acknowledgement that nothing will change. Committing an applied session
// returns the recorded result.
func (s *StockTakingService) Commit(ctx context.Context, id uuid.UUID, req CommitStockTakeRequest) (*inventory.CommitResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_take", "commit",
		telemetry.SpanAttrSessionID, id.String())
	defer span.End()

	lease, err := s.acquire(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer s.release(lease, id)

	started := time.Now()
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	expectedVersion := st.GetVersion()
	telemetry.SetAttributes(span, telemetry.SpanAttrStockTakeType, st.Type.String())

	result, err := st.Commit(ctx, s.store, st.Report, inventory.CommitOptions{
		AcknowledgeNoInventoryChanges: req.AcknowledgeNoInventoryChanges,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if result.Replayed {
		s.logger.Debug("stock-take commit replayed", zap.String("session_id", id.String()))
		telemetry.SetOK(span)
		return result, nil
	}

	// Lines written above stay written if this save conflicts; SetQuantity is idempotent.
	if err := s.repo.SaveWithLock(ctx, st, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	outcome := "applied"
	if result.HasFailures() {
		outcome = "partial"
		for _, line := range result.FailedLines {
			s.logger.Warn("inventory update failed",
				zap.String("session_id", id.String()),
				zap.String("product_id", line.ProductID.String()),
				zap.String("counted_qty", line.CountedQty.String()),
				zap.String("error", line.Error),
			)
		}
	}
	s.logger.Info("stock-take committed",
		zap.String("session_id", id.String()),
		zap.String("type", st.Type.String()),
		zap.String("outcome", outcome),
		zap.Int("applied", result.AppliedCount),
		zap.Int("already_applied", result.AlreadyApplied),
		zap.Int("failed", len(result.FailedLines)),
	)
	s.metrics.RecordCommit(ctx, st.Type.String(), outcome, result.AppliedCount, len(result.FailedLines), time.Since(started))
	s.publishEvents(ctx, st)
	telemetry.SetOK(span)

	return result, nil
}

// Abandon discards a session that has not written inventory
func (s *StockTakingService) Abandon(ctx context.Context, id uuid.UUID, req AbandonStockTakeRequest) (*StockTakeResponse, error) {
	lease, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.release(lease, id)

	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expectedVersion := st.GetVersion()

	if err := st.Abandon(req.Reason); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, st, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.Info("stock-take abandoned",
		zap.String("session_id", id.String()),
		zap.String("reason", req.Reason),
	)
	s.publishEvents(ctx, st)

	response := ToStockTakeResponse(st)
	return &response, nil
}

func lockKey(id uuid.UUID) string {
	return fmt.Sprintf("stock_take:%s", id)
}

// acquire takes the per-session lease. Without a locker the repository's
// optimistic version check is the only guard.
func (s *StockTakingService) acquire(ctx context.Context, id uuid.UUID) (shared.Lease, error) {
	if s.locker == nil {
		return nil, nil
	}
	lease, err := s.locker.TryLock(ctx, lockKey(id), s.lockTTL)
	if errors.Is(err, shared.ErrLockHeld) {
		return nil, ErrSessionBusy
	}
	if err != nil {
		return nil, shared.NewDependencyError("acquiring stock-take lock", err)
	}
	return lease, nil
}

func (s *StockTakingService) release(lease shared.Lease, id uuid.UUID) {
	if lease == nil {
		return
	}
	// Release must run even if the request context was cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := lease.Release(ctx); err != nil {
		s.logger.Warn("failed to release stock-take lock",
			zap.String("session_id", id.String()),
			zap.Error(err),
		)
	}
}

// publishEvents publishes domain events from the aggregate
func (s *StockTakingService) publishEvents(ctx context.Context, st *inventory.StockTakeSession) {
	events := st.GetDomainEvents()
	st.ClearDomainEvents()
	if s.eventBus == nil || len(events) == 0 {
		return
	}

	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock-take events",
			zap.String("session_id", st.ID.String()),
			zap.Error(err),
		)
	}
}

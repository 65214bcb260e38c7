package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/report"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ValuationQuery selects the period to value
type ValuationQuery struct {
	Period string `form:"period" binding:"required"`
	Save   bool   `form:"save"`
}

// SnapshotListFilter represents filter options for snapshot listings
type SnapshotListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SnapshotResponse represents a stored valuation in API responses
type SnapshotResponse struct {
	ID        uuid.UUID               `json:"id"`
	Source    report.SnapshotSource   `json:"source"`
	Report    *report.ValuationReport `json:"report"`
	CreatedAt time.Time               `json:"created_at"`
}

// ToSnapshotResponse converts a snapshot to its response DTO
func ToSnapshotResponse(s *report.ValuationSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:        s.ID,
		Source:    s.Source,
		Report:    s.Report,
		CreatedAt: s.CreatedAt,
	}
}

// ValuationService values the current inventory and stores snapshots
type ValuationService struct {
	store     inventory.InventoryStore
	ledger    inventory.WasteLedger
	snapshots report.ValuationSnapshotRepository
	metrics   *telemetry.ReconciliationMetrics
	logger    *zap.Logger
}

// NewValuationService creates a new ValuationService. snapshots may be nil when
// reports are never persisted.
func NewValuationService(
	store inventory.InventoryStore,
	ledger inventory.WasteLedger,
	snapshots report.ValuationSnapshotRepository,
	metrics *telemetry.ReconciliationMetrics,
	logger *zap.Logger,
) *ValuationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValuationService{
		store:     store,
		ledger:    ledger,
		snapshots: snapshots,
		metrics:   metrics,
		logger:    logger,
	}
}

// Compute values every product and adjusts gross profit by the period's waste.
// It never writes to the inventory store. When the waste ledger is unavailable
// the report uses zero waste and is flagged as degraded.
func (s *ValuationService) Compute(ctx context.Context, period inventory.Period) (*report.ValuationReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "valuation", "compute",
		telemetry.SpanAttrPeriod, period.Label())
	defer span.End()

	started := time.Now()
	var (
		products  []inventory.Product
		wasteCost = decimal.Zero
		degraded  bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.store.ListProducts(gctx)
		if err != nil {
			return shared.NewDependencyError("listing products", err)
		}
		products = list
		return nil
	})
	g.Go(func() error {
		if s.ledger == nil {
			degraded = true
			return nil
		}
		cost, err := s.ledger.GetWasteCostForPeriod(gctx, period)
		if err != nil {
			s.logger.Warn("waste ledger unavailable, valuing without waste",
				zap.String("period", period.Label()),
				zap.Error(err),
			)
			degraded = true
			return nil
		}
		if cost.IsNegative() {
			s.logger.Warn("waste ledger returned a negative cost, valuing without waste",
				zap.String("period", period.Label()),
				zap.String("waste_cost", cost.String()),
			)
			degraded = true
			return nil
		}
		wasteCost = cost
		return nil
	})
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	items := make([]report.ValuationInput, len(products))
	for i, p := range products {
		items[i] = report.ValuationInputFromProduct(p)
	}

	r, err := report.ComputeValuation(items, wasteCost, period)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	r.WasteDegraded = degraded

	telemetry.SetAttributes(span, telemetry.SpanAttrProductCount, r.TotalProducts)
	telemetry.SetOK(span)
	s.logger.Debug("valuation computed",
		zap.String("period", r.PeriodLabel),
		zap.Int("products", r.TotalProducts),
		zap.String("total_stock_value", r.TotalStockValue.StringFixed(2)),
		zap.Bool("waste_degraded", degraded),
	)
	s.metrics.RecordValuation(ctx, "compute", r.TotalStockValue, time.Since(started))

	return r, nil
}

// ComputeForQuery parses the query period, computes the report and stores a
// manual snapshot when requested
func (s *ValuationService) ComputeForQuery(ctx context.Context, q ValuationQuery) (*report.ValuationReport, error) {
	period, err := inventory.ParsePeriod(q.Period)
	if err != nil {
		return nil, err
	}
	if q.Save {
		snapshot, err := s.TakeSnapshot(ctx, period, report.SnapshotSourceManual)
		if err != nil {
			return nil, err
		}
		return snapshot.Report, nil
	}
	return s.Compute(ctx, period)
}

// TakeSnapshot computes and persists the valuation of a period
func (s *ValuationService) TakeSnapshot(ctx context.Context, period inventory.Period, source report.SnapshotSource) (*report.ValuationSnapshot, error) {
	if s.snapshots == nil {
		return nil, shared.NewInvalidStateError("Valuation snapshots are not configured")
	}

	r, err := s.Compute(ctx, period)
	if err != nil {
		return nil, err
	}

	snapshot, err := report.NewValuationSnapshot(r, source)
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info("valuation snapshot stored",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.String("period", r.PeriodLabel),
		zap.String("source", string(source)),
		zap.Bool("waste_degraded", r.WasteDegraded),
	)
	return snapshot, nil
}

// LatestSnapshot returns the most recent snapshot of a "YYYY-MM" period
func (s *ValuationService) LatestSnapshot(ctx context.Context, periodLabel string) (*SnapshotResponse, error) {
	if s.snapshots == nil {
		return nil, shared.NewInvalidStateError("Valuation snapshots are not configured")
	}
	if _, err := inventory.ParsePeriod(periodLabel); err != nil {
		return nil, err
	}

	snapshot, err := s.snapshots.FindLatestByPeriod(ctx, periodLabel)
	if err != nil {
		return nil, err
	}
	response := ToSnapshotResponse(snapshot)
	return &response, nil
}

// ListSnapshots lists stored snapshots, newest first
func (s *ValuationService) ListSnapshots(ctx context.Context, filter SnapshotListFilter) ([]SnapshotResponse, error) {
	if s.snapshots == nil {
		return []SnapshotResponse{}, nil
	}

	snapshots, err := s.snapshots.FindAll(ctx, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, err
	}

	responses := make([]SnapshotResponse, len(snapshots))
	for i, snap := range snapshots {
		responses[i] = ToSnapshotResponse(snap)
	}
	return responses, nil
}

package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockTakeType distinguishes monitoring counts from authoritative counts
type StockTakeType string

const (
	// StockTakeTypeWeekly counts are a monitoring signal and never write inventory
	StockTakeTypeWeekly StockTakeType = "WEEKLY"
	// StockTakeTypeMonthly counts are authoritative and overwrite system quantities
	StockTakeTypeMonthly StockTakeType = "MONTHLY"
)

// IsValid checks if the type is a known StockTakeType
func (t StockTakeType) IsValid() bool {
	return t == StockTakeTypeWeekly || t == StockTakeTypeMonthly
}

// WritesInventory reports whether committing this type updates the inventory store
func (t StockTakeType) WritesInventory() bool {
	return t == StockTakeTypeMonthly
}

// String returns the string representation of StockTakeType
func (t StockTakeType) String() string {
	return string(t)
}

// SessionStatus represents the lifecycle state of a stock-take session
type SessionStatus string

const (
	SessionStatusOpen      SessionStatus = "OPEN"
	SessionStatusFinalized SessionStatus = "FINALIZED"
	SessionStatusApplied   SessionStatus = "APPLIED"
	SessionStatusAbandoned SessionStatus = "ABANDONED"
)

// IsValid checks if the status is a valid SessionStatus
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusOpen, SessionStatusFinalized, SessionStatusApplied, SessionStatusAbandoned:
		return true
	}
	return false
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusApplied || s == SessionStatusAbandoned
}

// CanTransitionTo checks if the status can transition to the target status
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	switch s {
	case SessionStatusOpen:
		return target == SessionStatusFinalized || target == SessionStatusAbandoned
	case SessionStatusFinalized:
		return target == SessionStatusApplied || target == SessionStatusAbandoned
	}
	return false
}

// CommitOptions carries caller intent for Commit
type CommitOptions struct {
	// AcknowledgeNoInventoryChanges must be set to commit a weekly session
	AcknowledgeNoInventoryChanges bool
}

// FailedLine is a quantity update the inventory store did not accept
type FailedLine struct {
	ProductID  uuid.UUID       `json:"product_id"`
	CountedQty decimal.Decimal `json:"counted_qty"`
	Error      string          `json:"error"`
}

// CommitResult reports what a commit wrote to inventory
type CommitResult struct {
	SessionID        uuid.UUID     `json:"session_id"`
	Type             StockTakeType `json:"type"`
	InventoryUpdated bool          `json:"inventory_updated"`
	AppliedCount     int           `json:"applied_count"`
	AlreadyApplied   int           `json:"already_applied"`
	ExactCount       int           `json:"exact_count"`
	FailedLines      []FailedLine  `json:"failed_lines"`
	Replayed         bool          `json:"replayed"`
	CommittedAt      time.Time     `json:"committed_at"`
}

// HasFailures reports whether any line was rejected
func (r *CommitResult) HasFailures() bool {
	return len(r.FailedLines) > 0
}

// StockTakeSession is one physical counting exercise. It is the aggregate root
// for counting, reconciliation and commit of counted quantities.
type StockTakeSession struct {
	shared.BaseAggregateRoot
	Type          StockTakeType
	Status        SessionStatus
	ProductIDs    []uuid.UUID
	Counts        map[uuid.UUID]decimal.Decimal
	Report        *ReconciliationReport
	AppliedLines  map[uuid.UUID]bool
	LastCommit    *CommitResult
	CreatedBy     string
	Note          string
	FinalizedAt   *time.Time
	AppliedAt     *time.Time
	AbandonedAt   *time.Time
	AbandonReason string
}

// NewStockTakeSession opens a counting session over the given products
func NewStockTakeSession(stType StockTakeType, productIDs []uuid.UUID, createdBy string) (*StockTakeSession, error) {
	if !stType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid stock-take type %q", stType))
	}

	scope := make([]uuid.UUID, 0, len(productIDs))
	seen := make(map[uuid.UUID]bool, len(productIDs))
	for _, id := range productIDs {
		if id == uuid.Nil {
			return nil, shared.NewValidationError("Product ID cannot be empty")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		scope = append(scope, id)
	}

	st := &StockTakeSession{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              stType,
		Status:            SessionStatusOpen,
		ProductIDs:        scope,
		Counts:            make(map[uuid.UUID]decimal.Decimal),
		AppliedLines:      make(map[uuid.UUID]bool),
		CreatedBy:         createdBy,
	}

	st.AddDomainEvent(NewStockTakeCreatedEvent(st))

	return st, nil
}

// InScope reports whether a product belongs to the session
func (st *StockTakeSession) InScope(productID uuid.UUID) bool {
	for _, id := range st.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// RecordCount records or overwrites the physical count for a product.
// Products outside the initial scope are added to it.
func (st *StockTakeSession) RecordCount(productID uuid.UUID, quantity decimal.Decimal) error {
	if st.Status != SessionStatusOpen {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot record counts in %s status", st.Status))
	}
	if productID == uuid.Nil {
		return shared.NewValidationError("Product ID cannot be empty")
	}
	if quantity.IsNegative() {
		return shared.NewValidationError("Counted quantity cannot be negative")
	}

	if !st.InScope(productID) {
		st.ProductIDs = append(st.ProductIDs, productID)
	}
	if st.Counts == nil {
		st.Counts = make(map[uuid.UUID]decimal.Decimal)
	}
	var previous *decimal.Decimal
	if prior, ok := st.Counts[productID]; ok {
		previous = &prior
	}
	st.Counts[productID] = quantity
	st.IncrementVersion()

	st.AddDomainEvent(NewStockTakeCountRecordedEvent(st, productID, quantity, previous))

	return nil
}

// CountedQuantity returns the recorded count, zero when the product was never counted
func (st *StockTakeSession) CountedQuantity(productID uuid.UUID) decimal.Decimal {
	if q, ok := st.Counts[productID]; ok {
		return q
	}
	return decimal.Zero
}

// IsCounted reports whether a count was explicitly recorded
func (st *StockTakeSession) IsCounted(productID uuid.UUID) bool {
	_, ok := st.Counts[productID]
	return ok
}

// UncountedProducts returns in-scope products without an explicit count
func (st *StockTakeSession) UncountedProducts() []uuid.UUID {
	result := make([]uuid.UUID, 0)
	for _, id := range st.ProductIDs {
		if !st.IsCounted(id) {
			result = append(result, id)
		}
	}
	return result
}

// Finalize reads current system quantities and costs from the store, classifies
// every product in scope and freezes the counts. Uncounted products are
// treated as counted at zero. On a store failure the session stays open.
func (st *StockTakeSession) Finalize(ctx context.Context, reader InventoryReader) (*ReconciliationReport, error) {
	if !st.Status.CanTransitionTo(SessionStatusFinalized) {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("Cannot finalize a stock-take in %s status", st.Status))
	}

	records := make([]DiscrepancyRecord, 0, len(st.ProductIDs))
	for _, productID := range st.ProductIDs {
		systemQty, err := reader.GetQuantity(ctx, productID)
		if err != nil {
			return nil, shared.NewDependencyError(fmt.Sprintf("reading quantity of product %s", productID), err)
		}
		unitCost, err := reader.GetCost(ctx, productID)
		if err != nil {
			return nil, shared.NewDependencyError(fmt.Sprintf("reading cost of product %s", productID), err)
		}

		rec, err := Classify(productID, systemQty, st.CountedQuantity(productID), unitCost)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	report := NewReconciliationReport(st.ID, records)

	now := time.Now()
	st.Report = report
	st.Status = SessionStatusFinalized
	st.FinalizedAt = &now
	st.IncrementVersion()

	st.AddDomainEvent(NewStockTakeFinalizedEvent(st))

	return report, nil
}

// Commit records the outcome of a finalized session.
//
// Monthly sessions overwrite the system quantity of every non-exact product with
// its counted quantity. Failed lines are reported and the session stays
// finalized; a later commit only re-issues lines that have not succeeded yet.
// Weekly sessions never write inventory and require the caller to acknowledge that.
// Committing an applied session replays the recorded result without side effects.
func (st *StockTakeSession) Commit(ctx context.Context, writer InventoryWriter, report *ReconciliationReport, opts CommitOptions) (*CommitResult, error) {
	if st.Status == SessionStatusApplied && st.LastCommit != nil {
		replay := *st.LastCommit
		replay.FailedLines = append([]FailedLine(nil), st.LastCommit.FailedLines...)
		replay.Replayed = true
		return &replay, nil
	}
	if st.Status != SessionStatusFinalized {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("Cannot commit a stock-take in %s status", st.Status))
	}
	if report == nil || st.Report == nil || report.SessionID != st.ID {
		return nil, shared.NewValidationError("Report does not belong to this stock-take")
	}

	result := &CommitResult{
		SessionID:   st.ID,
		Type:        st.Type,
		ExactCount:  len(st.Report.ExactMatches),
		FailedLines: make([]FailedLine, 0),
		CommittedAt: time.Now(),
	}

	if !st.Type.WritesInventory() {
		if !opts.AcknowledgeNoInventoryChanges {
			return nil, shared.NewValidationError("Weekly stock-takes do not change inventory; acknowledgement is required to record them")
		}
		st.markApplied(result)
		return result, nil
	}

	if st.AppliedLines == nil {
		st.AppliedLines = make(map[uuid.UUID]bool)
	}
	for _, rec := range st.Report.NonExact() {
		if st.AppliedLines[rec.ProductID] {
			result.AlreadyApplied++
			continue
		}
		if err := writer.SetQuantity(ctx, rec.ProductID, rec.CountedQty); err != nil {
			result.FailedLines = append(result.FailedLines, FailedLine{
				ProductID:  rec.ProductID,
				CountedQty: rec.CountedQty,
				Error:      err.Error(),
			})
			continue
		}
		st.AppliedLines[rec.ProductID] = true
		result.AppliedCount++
	}
	result.InventoryUpdated = result.AppliedCount > 0

	if result.HasFailures() {
		st.LastCommit = result
		st.IncrementVersion()
		st.AddDomainEvent(NewStockTakeCommitFailedEvent(st, result))
		return result, nil
	}

	st.markApplied(result)
	return result, nil
}

func (st *StockTakeSession) markApplied(result *CommitResult) {
	now := time.Now()
	st.Status = SessionStatusApplied
	st.AppliedAt = &now
	st.LastCommit = result
	st.IncrementVersion()

	st.AddDomainEvent(NewStockTakeAppliedEvent(st, result))
}

// Abandon discards the session before it is applied
func (st *StockTakeSession) Abandon(reason string) error {
	if !st.Status.CanTransitionTo(SessionStatusAbandoned) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot abandon a stock-take in %s status", st.Status))
	}
	if st.Status == SessionStatusFinalized && len(st.AppliedLines) > 0 {
		return shared.NewInvalidStateError("Cannot abandon a stock-take with inventory updates already applied")
	}

	now := time.Now()
	st.Status = SessionStatusAbandoned
	st.AbandonedAt = &now
	st.AbandonReason = reason
	st.IncrementVersion()

	st.AddDomainEvent(NewStockTakeAbandonedEvent(st))

	return nil
}

// SetNote sets a free-form note on the session
func (st *StockTakeSession) SetNote(note string) {
	st.Note = note
	st.UpdatedAt = time.Now()
}

package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// Commit outcomes
const (
	OutcomeApplied  = "applied"
	OutcomePartial  = "partial"
	OutcomeReplayed = "replayed"
	OutcomeNoWrite  = "no_write"
)

// ReconciliationMetrics records stock-take, receiving and valuation activity
type ReconciliationMetrics struct {
	sessionsFinalized metric.Int64Counter
	sessionsCommitted metric.Int64Counter
	discrepancies     metric.Int64Counter
	linesWritten      metric.Int64Counter
	linesFailed       metric.Int64Counter
	oversellCleared   metric.Int64Counter
	shrinkageValue    metric.Float64Gauge
	stockValue        metric.Float64Gauge
	operationDuration metric.Float64Histogram
}

// NewReconciliationMetrics registers all instruments on meter.
func NewReconciliationMetrics(meter metric.Meter) (*ReconciliationMetrics, error) {
	in := NewInstruments(meter)
	m := &ReconciliationMetrics{
		sessionsFinalized: in.Count("stock_take.sessions.finalized",
			"Stock-take sessions finalized into a reconciliation report", "{session}"),
		sessionsCommitted: in.Count("stock_take.sessions.committed",
			"Stock-take commits by outcome", "{session}"),
		discrepancies: in.Count("stock_take.discrepancies",
			"Non-exact discrepancy records by direction", "{product}"),
		linesWritten: in.Count("stock_take.lines.written",
			"Counted quantities written back to the inventory store", "{product}"),
		linesFailed: in.Count("stock_take.lines.failed",
			"Counted quantities the inventory store rejected", "{product}"),
		oversellCleared: in.Count("receiving.oversell.cleared",
			"Receipts that brought an oversold product back to zero or above", "{receipt}"),
		shrinkageValue: in.Level("stock_take.shrinkage.value",
			"Shrinkage value of the latest finalized session", "{currency}"),
		stockValue: in.Level("valuation.stock.value",
			"Total stock value of the latest valuation report", "{currency}"),
		operationDuration: in.Seconds("reconciliation.operation.duration",
			"Duration of finalize, commit and valuation runs", OperationDurationBuckets),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordFinalized records one finalized session and its report aggregates
func (m *ReconciliationMetrics) RecordFinalized(ctx context.Context, stockTakeType string, overstock, understock int, shrinkage decimal.Decimal, d time.Duration) {
	if m == nil {
		return
	}
	typeAttr := AttrStockTakeType.String(stockTakeType)
	m.sessionsFinalized.Add(ctx, 1, With(typeAttr))
	m.discrepancies.Add(ctx, int64(overstock), With(typeAttr, AttrDirection.String("overstock")))
	m.discrepancies.Add(ctx, int64(understock), With(typeAttr, AttrDirection.String("understock")))
	m.shrinkageValue.Record(ctx, shrinkage.InexactFloat64(), With(typeAttr))
	m.operationDuration.Record(ctx, d.Seconds(), With(AttrOutcome.String("finalize")))
}

// RecordCommit records a commit attempt
func (m *ReconciliationMetrics) RecordCommit(ctx context.Context, stockTakeType, outcome string, written, failed int, d time.Duration) {
	if m == nil {
		return
	}
	typeAttr := AttrStockTakeType.String(stockTakeType)
	m.sessionsCommitted.Add(ctx, 1, With(typeAttr, AttrOutcome.String(outcome)))
	if written > 0 {
		m.linesWritten.Add(ctx, int64(written), With(typeAttr))
	}
	if failed > 0 {
		m.linesFailed.Add(ctx, int64(failed), With(typeAttr))
	}
	m.operationDuration.Record(ctx, d.Seconds(), With(AttrOutcome.String("commit")))
}

// RecordOversellCleared records a receipt that cleared an oversell
func (m *ReconciliationMetrics) RecordOversellCleared(ctx context.Context) {
	if m == nil {
		return
	}
	m.oversellCleared.Add(ctx, 1)
}

// RecordValuation records the total stock value of a generated report
func (m *ReconciliationMetrics) RecordValuation(ctx context.Context, source string, totalStockValue decimal.Decimal, d time.Duration) {
	if m == nil {
		return
	}
	m.stockValue.Record(ctx, totalStockValue.InexactFloat64(), With(AttrSource.String(source)))
	m.operationDuration.Record(ctx, d.Seconds(), With(AttrOutcome.String("valuation")))
}

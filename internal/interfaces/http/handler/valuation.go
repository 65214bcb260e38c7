package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	reportapp "github.com/shopkeeper/backend/internal/application/report"
	"github.com/shopkeeper/backend/internal/domain/report"
	"github.com/shopkeeper/backend/internal/infrastructure/scheduler"
	"github.com/shopkeeper/backend/internal/interfaces/http/dto"
)

// SnapshotScheduler runs valuation snapshots on demand and reports its state
type SnapshotScheduler interface {
	TriggerRun(ctx context.Context) (*report.ValuationSnapshot, error)
	Status() scheduler.Status
}

// ValuationHandler handles valuation report endpoints
type ValuationHandler struct {
	BaseHandler
	valuationService *reportapp.ValuationService
	scheduler        SnapshotScheduler
}

// NewValuationHandler creates a new ValuationHandler. sched may be nil
// when scheduled snapshots are disabled.
func NewValuationHandler(valuationService *reportapp.ValuationService, sched SnapshotScheduler) *ValuationHandler {
	return &ValuationHandler{
		valuationService: valuationService,
		scheduler:        sched,
	}
}

// Get godoc
// @Summary      Compute the valuation report
// @Description  Values current stock and adjusts gross profit by the period's waste.
// @Description  waste_degraded is set when the waste ledger could not be read.
// @Tags         valuation
// @Produce      json
// @Param        period query string true "Month (YYYY-MM)"
// @Param        save query bool false "Store the result as a manual snapshot"
// @Success      200 {object} dto.Response{data=report.ValuationReport}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /valuation [get]
func (h *ValuationHandler) Get(c *gin.Context) {
	var query reportapp.ValuationQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.valuationService.ComputeForQuery(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListSnapshots godoc
// @Summary      List stored valuation snapshots
// @Tags         valuation
// @Produce      json
// @Param        period query string false "Latest snapshot for this month only (YYYY-MM)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]reportapp.SnapshotResponse}
// @Router       /valuation/snapshots [get]
func (h *ValuationHandler) ListSnapshots(c *gin.Context) {
	if period := c.Query("period"); period != "" {
		snap, err := h.valuationService.LatestSnapshot(c.Request.Context(), period)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, []reportapp.SnapshotResponse{*snap})
		return
	}

	var filter reportapp.SnapshotListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	items, err := h.valuationService.ListSnapshots(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// RunSnapshot godoc
// @Summary      Snapshot the previous month now
// @Description  Runs the scheduled snapshot job outside its schedule.
// @Tags         valuation
// @Produce      json
// @Success      201 {object} dto.Response{data=reportapp.SnapshotResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /valuation/snapshots/run [post]
func (h *ValuationHandler) RunSnapshot(c *gin.Context) {
	if h.scheduler == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Scheduled snapshots are disabled")
		return
	}

	snap, err := h.scheduler.TriggerRun(c.Request.Context())
	switch {
	case errors.Is(err, scheduler.ErrRunInProgress):
		h.Error(c, http.StatusConflict, dto.ErrCodeConcurrencyConflict, "A snapshot run is already in progress")
		return
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Scheduler is not running")
		return
	case err != nil:
		h.HandleError(c, err)
		return
	}

	h.Created(c, reportapp.ToSnapshotResponse(snap))
}

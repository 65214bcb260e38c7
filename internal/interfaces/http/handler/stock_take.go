package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/shopkeeper/backend/internal/application/inventory"
)

// StockTakeHandler handles stock-take session endpoints
type StockTakeHandler struct {
	BaseHandler
	stockTakingService *inventoryapp.StockTakingService
}

// NewStockTakeHandler creates a new StockTakeHandler
func NewStockTakeHandler(stockTakingService *inventoryapp.StockTakingService) *StockTakeHandler {
	return &StockTakeHandler{
		stockTakingService: stockTakingService,
	}
}

// Create godoc
// @Summary      Open a stock-take session
// @Description  Creates an OPEN session. Product IDs are optional and deduplicated.
// @Tags         stock-takes
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateStockTakeRequest true "Session type and scope"
// @Success      201 {object} dto.Response{data=inventoryapp.StockTakeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock-takes [post]
func (h *StockTakeHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateStockTakeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.stockTakingService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @Summary      Get a stock-take session
// @Tags         stock-takes
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.StockTakeResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock-takes/{id} [get]
func (h *StockTakeHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.stockTakingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @Summary      List stock-take sessions
// @Tags         stock-takes
// @Produce      json
// @Param        status query string false "Filter by status" Enums(OPEN, FINALIZED, APPLIED, ABANDONED)
// @Param        type query string false "Filter by type" Enums(WEEKLY, MONTHLY)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockTakeListResponse,meta=dto.Meta}
// @Router       /stock-takes [get]
func (h *StockTakeHandler) List(c *gin.Context) {
	var filter inventoryapp.StockTakeListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	items, total, err := h.stockTakingService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// RecordCounts godoc
// @Summary      Record physical counts
// @Description  Applies counts in order; a later count for the same product replaces the earlier one.
// @Tags         stock-takes
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body inventoryapp.RecordCountsRequest true "Counts"
// @Success      200 {object} dto.Response{data=inventoryapp.StockTakeResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock-takes/{id}/counts [put]
func (h *StockTakeHandler) RecordCounts(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req inventoryapp.RecordCountsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.stockTakingService.RecordCounts(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Finalize godoc
// @Summary      Finalize a session
// @Description  Compares counts with system quantities and freezes the reconciliation report.
// @Tags         stock-takes
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventory.ReconciliationReport}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock-takes/{id}/finalize [post]
func (h *StockTakeHandler) Finalize(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.stockTakingService.Finalize(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Commit godoc
// @Summary      Commit a finalized session
// @Description  Monthly sessions write counted quantities back to the store. Weekly sessions
// @Description  require acknowledge_no_inventory_changes and never write.
// @Tags         stock-takes
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body inventoryapp.CommitStockTakeRequest false "Commit options"
// @Success      200 {object} dto.Response{data=inventory.CommitResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock-takes/{id}/commit [post]
func (h *StockTakeHandler) Commit(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req inventoryapp.CommitStockTakeRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	result, err := h.stockTakingService.Commit(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Abandon godoc
// @Summary      Abandon a session
// @Tags         stock-takes
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body inventoryapp.AbandonStockTakeRequest false "Reason"
// @Success      200 {object} dto.Response{data=inventoryapp.StockTakeResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock-takes/{id}/abandon [post]
func (h *StockTakeHandler) Abandon(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req inventoryapp.AbandonStockTakeRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	result, err := h.stockTakingService.Abandon(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/shopkeeper/backend/internal/application/inventory"
)

// WasteHandler handles waste log endpoints
type WasteHandler struct {
	BaseHandler
	wasteService *inventoryapp.WasteService
}

// NewWasteHandler creates a new WasteHandler
func NewWasteHandler(wasteService *inventoryapp.WasteService) *WasteHandler {
	return &WasteHandler{
		wasteService: wasteService,
	}
}

// Record godoc
// @Summary      Record waste
// @Description  Logs a waste entry at the product's current unit cost. Quantities are not changed.
// @Tags         waste
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.RecordWasteRequest true "Waste entry"
// @Success      201 {object} dto.Response{data=inventoryapp.WasteEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /waste [post]
func (h *WasteHandler) Record(c *gin.Context) {
	var req inventoryapp.RecordWasteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.wasteService.RecordWaste(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List godoc
// @Summary      List waste for a period
// @Tags         waste
// @Produce      json
// @Param        period query string true "Month (YYYY-MM)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]inventoryapp.WasteEntryResponse,meta=dto.Meta}
// @Router       /waste [get]
func (h *WasteHandler) List(c *gin.Context) {
	var filter inventoryapp.WasteListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	items, total, err := h.wasteService.ListWaste(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

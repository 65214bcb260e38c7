package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/shopkeeper/backend/internal/application/inventory"
)

// ReceivingHandler handles stock receipt endpoints
type ReceivingHandler struct {
	BaseHandler
	receivingService *inventoryapp.ReceivingService
}

// NewReceivingHandler creates a new ReceivingHandler
func NewReceivingHandler(receivingService *inventoryapp.ReceivingService) *ReceivingHandler {
	return &ReceivingHandler{
		receivingService: receivingService,
	}
}

// Receive godoc
// @Summary      Receive stock
// @Description  Validates every line, then applies lines one by one. Lines that fail are
// @Description  reported in the result; lines already applied are not rolled back.
// @Tags         receiving
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ReceiveStockRequest true "Receipt lines"
// @Success      200 {object} dto.Response{data=inventoryapp.ReceiveStockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /receiving [post]
func (h *ReceivingHandler) Receive(c *gin.Context) {
	var req inventoryapp.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.receivingService.Receive(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

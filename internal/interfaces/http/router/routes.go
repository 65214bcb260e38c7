package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopkeeper/backend/internal/interfaces/http/handler"
)

// Handlers bundles the API handlers wired by the server
type Handlers struct {
	StockTake *handler.StockTakeHandler
	Receiving *handler.ReceivingHandler
	Valuation *handler.ValuationHandler
	Waste     *handler.WasteHandler
	Health    *handler.HealthHandler
}

// RegisterAPI registers the reconciliation API on r and the health probe on engine
func RegisterAPI(engine *gin.Engine, r *Router, h Handlers) {
	engine.GET("/health", h.Health.Health)

	stockTakes := NewDomainGroup("/stock-takes").
		POST("", h.StockTake.Create).
		GET("", h.StockTake.List).
		GET("/:id", h.StockTake.GetByID).
		PUT("/:id/counts", h.StockTake.RecordCounts).
		POST("/:id/finalize", h.StockTake.Finalize).
		POST("/:id/commit", h.StockTake.Commit).
		POST("/:id/abandon", h.StockTake.Abandon)

	receiving := NewDomainGroup("/receiving").
		POST("", h.Receiving.Receive)

	valuation := NewDomainGroup("/valuation").
		GET("", h.Valuation.Get)
	valuation.Group("/snapshots").
		GET("", h.Valuation.ListSnapshots).
		POST("/run", h.Valuation.RunSnapshot)

	waste := NewDomainGroup("/waste").
		POST("", h.Waste.Record).
		GET("", h.Waste.List)

	system := NewDomainGroup("").
		GET("/health", h.Health.Health)

	r.Register(stockTakes, receiving, valuation, waste, system)
	r.Setup()
}

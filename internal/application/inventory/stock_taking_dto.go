package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ===================== Request DTOs =====================

// CreateStockTakeRequest represents a request to open a stock-take session
type CreateStockTakeRequest struct {
	Type       inventory.StockTakeType `json:"type" binding:"required,oneof=WEEKLY MONTHLY"`
	ProductIDs []uuid.UUID             `json:"product_ids"`
	CreatedBy  string                  `json:"created_by" binding:"max=100"`
	Note       string                  `json:"note" binding:"max=500"`
}

// RecordCountRequest represents the physical count of one product
type RecordCountRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"decimal_gte0"`
}

// RecordCountsRequest represents a batch of counts
type RecordCountsRequest struct {
	Counts []RecordCountRequest `json:"counts" binding:"required,min=1,dive"`
}

// CommitStockTakeRequest represents a request to commit a finalized session
type CommitStockTakeRequest struct {
	AcknowledgeNoInventoryChanges bool `json:"acknowledge_no_inventory_changes"`
}

// AbandonStockTakeRequest represents a request to abandon a session
type AbandonStockTakeRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// StockTakeListFilter represents filter options for session lists
type StockTakeListFilter struct {
	Status   inventory.SessionStatus `form:"status" binding:"omitempty,oneof=OPEN FINALIZED APPLIED ABANDONED"`
	Type     inventory.StockTakeType `form:"type" binding:"omitempty,oneof=WEEKLY MONTHLY"`
	Page     int                     `form:"page" binding:"omitempty,min=1"`
	PageSize int                     `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir string                  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ===================== Response DTOs =====================

// CountResponse is one recorded count
type CountResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// StockTakeResponse represents a stock-take session in API responses
type StockTakeResponse struct {
	ID                uuid.UUID                       `json:"id"`
	Type              inventory.StockTakeType         `json:"type"`
	Status            inventory.SessionStatus         `json:"status"`
	ProductIDs        []uuid.UUID                     `json:"product_ids"`
	Counts            []CountResponse                 `json:"counts"`
	UncountedProducts []uuid.UUID                     `json:"uncounted_products"`
	Report            *inventory.ReconciliationReport `json:"report,omitempty"`
	LastCommit        *inventory.CommitResult         `json:"last_commit,omitempty"`
	CreatedBy         string                          `json:"created_by,omitempty"`
	Note              string                          `json:"note,omitempty"`
	AbandonReason     string                          `json:"abandon_reason,omitempty"`
	FinalizedAt       *time.Time                      `json:"finalized_at,omitempty"`
	AppliedAt         *time.Time                      `json:"applied_at,omitempty"`
	AbandonedAt       *time.Time                      `json:"abandoned_at,omitempty"`
	Version           int                             `json:"version"`
	CreatedAt         time.Time                       `json:"created_at"`
	UpdatedAt         time.Time                       `json:"updated_at"`
}

// StockTakeListResponse represents a session in list responses
type StockTakeListResponse struct {
	ID            uuid.UUID               `json:"id"`
	Type          inventory.StockTakeType `json:"type"`
	Status        inventory.SessionStatus `json:"status"`
	TotalProducts int                     `json:"total_products"`
	CountedCount  int                     `json:"counted_count"`
	CreatedBy     string                  `json:"created_by,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// ===================== Mappers =====================

// ToStockTakeResponse converts a session aggregate to its response DTO.
// Counts follow the session's product order.
func ToStockTakeResponse(st *inventory.StockTakeSession) StockTakeResponse {
	counts := make([]CountResponse, 0, len(st.Counts))
	for _, id := range st.ProductIDs {
		if q, ok := st.Counts[id]; ok {
			counts = append(counts, CountResponse{ProductID: id, Quantity: q})
		}
	}

	return StockTakeResponse{
		ID:                st.ID,
		Type:              st.Type,
		Status:            st.Status,
		ProductIDs:        append([]uuid.UUID{}, st.ProductIDs...),
		Counts:            counts,
		UncountedProducts: st.UncountedProducts(),
		Report:            st.Report,
		LastCommit:        st.LastCommit,
		CreatedBy:         st.CreatedBy,
		Note:              st.Note,
		AbandonReason:     st.AbandonReason,
		FinalizedAt:       st.FinalizedAt,
		AppliedAt:         st.AppliedAt,
		AbandonedAt:       st.AbandonedAt,
		Version:           st.GetVersion(),
		CreatedAt:         st.CreatedAt,
		UpdatedAt:         st.UpdatedAt,
	}
}

// ToStockTakeListResponses converts sessions to list DTOs
func ToStockTakeListResponses(sessions []*inventory.StockTakeSession) []StockTakeListResponse {
	responses := make([]StockTakeListResponse, len(sessions))
	for i, st := range sessions {
		responses[i] = StockTakeListResponse{
			ID:            st.ID,
			Type:          st.Type,
			Status:        st.Status,
			TotalProducts: len(st.ProductIDs),
			CountedCount:  len(st.Counts),
			CreatedBy:     st.CreatedBy,
			CreatedAt:     st.CreatedAt,
			UpdatedAt:     st.UpdatedAt,
		}
	}
	return responses
}

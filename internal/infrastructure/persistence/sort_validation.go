package persistence

import (
	"strings"

	"github.com/shopkeeper/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// sortSpec whitelists the columns a listing may be ordered by
type sortSpec struct {
	columns  map[string]bool
	fallback string
}

var (
	stockTakeSort = sortSpec{
		columns: map[string]bool{
			"created_at":   true,
			"updated_at":   true,
			"status":       true,
			"type":         true,
			"finalized_at": true,
			"applied_at":   true,
		},
		fallback: "created_at",
	}
	wasteEntrySort = sortSpec{
		columns: map[string]bool{
			"created_at":  true,
			"occurred_at": true,
			"quantity":    true,
			"reason":      true,
		},
		fallback: "occurred_at",
	}
	snapshotSort = sortSpec{
		columns: map[string]bool{
			"created_at":   true,
			"period_label": true,
		},
		fallback: "created_at",
	}
)

// clause builds the ORDER BY expression. Unknown columns use the fallback and
// anything other than asc sorts descending, so user input never reaches SQL.
func (s sortSpec) clause(filter shared.Filter) string {
	column := strings.TrimSpace(filter.OrderBy)
	if !s.columns[column] {
		column = s.fallback
	}
	if strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc") {
		return column + " ASC"
	}
	return column + " DESC"
}

// page is a gorm scope applying the filter's ordering and pagination
func (s sortSpec) page(filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(s.clause(filter)).Offset(filter.Offset()).Limit(filter.Limit())
	}
}

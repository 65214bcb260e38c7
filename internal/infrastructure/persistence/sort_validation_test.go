package persistence

import (
	"testing"

	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestSortSpec_Clause(t *testing.T) {
	tests := []struct {
		name     string
		spec     sortSpec
		filter   shared.Filter
		expected string
	}{
		{"empty filter uses fallback descending", stockTakeSort, shared.Filter{}, "created_at DESC"},
		{"whitelisted column ascending", stockTakeSort, shared.Filter{OrderBy: "finalized_at", OrderDir: "asc"}, "finalized_at ASC"},
		{"direction is case insensitive", wasteEntrySort, shared.Filter{OrderBy: "quantity", OrderDir: " ASC "}, "quantity ASC"},
		{"unknown direction sorts descending", wasteEntrySort, shared.Filter{OrderBy: "reason", OrderDir: "sideways"}, "reason DESC"},
		{"unknown column falls back", wasteEntrySort, shared.Filter{OrderBy: "unit_cost"}, "occurred_at DESC"},
		{"column from another listing falls back", snapshotSort, shared.Filter{OrderBy: "status"}, "created_at DESC"},
		{"surrounding whitespace is ignored", snapshotSort, shared.Filter{OrderBy: "  period_label ", OrderDir: "asc"}, "period_label ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.spec.clause(tt.filter))
		})
	}
}

func TestSortSpec_RejectsInjection(t *testing.T) {
	payloads := []string{
		"created_at; DROP TABLE stock_take_sessions;--",
		"created_at, (SELECT 1)",
		"1=1",
		"status DESC",
	}

	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			got := stockTakeSort.clause(shared.Filter{OrderBy: payload, OrderDir: payload})
			assert.Equal(t, "created_at DESC", got)
		})
	}
}

func TestSortSpecs_FallbackIsWhitelisted(t *testing.T) {
	for name, spec := range map[string]sortSpec{
		"stock takes": stockTakeSort,
		"waste":       wasteEntrySort,
		"snapshots":   snapshotSort,
	} {
		assert.True(t, spec.columns[spec.fallback], name)
	}
}

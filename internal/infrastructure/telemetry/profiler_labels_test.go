package telemetry_test

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/shopkeeper/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestWithProfilingLabels_EmptyLabels(t *testing.T) {
	called := false
	telemetry.WithProfilingLabels(context.Background(), nil, func(c context.Context) {
		called = true
	})
	assert.True(t, called)
}

func TestWithProfilingLabels_SetsPprofLabels(t *testing.T) {
	labels := map[string]string{
		telemetry.ProfilingLabelRoute:     "/api/v1/stock-takes/:id/finalize",
		telemetry.ProfilingLabelMethod:    "POST",
		telemetry.ProfilingLabelOperation: "",
	}

	var route, method string
	var opSet bool
	telemetry.WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
		route, _ = pprof.Label(ctx, telemetry.ProfilingLabelRoute)
		method, _ = pprof.Label(ctx, telemetry.ProfilingLabelMethod)
		_, opSet = pprof.Label(ctx, telemetry.ProfilingLabelOperation)
	})

	assert.Equal(t, "/api/v1/stock-takes/:id/finalize", route)
	assert.Equal(t, "POST", method)
	assert.False(t, opSet, "empty values are dropped")
}

package telemetry

import (
	"context"
	"maps"
	"slices"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelRoute     = "route"
	ProfilingLabelMethod    = "method"
	ProfilingLabelOperation = "operation"
)

// WithProfilingLabels runs fn with Pyroscope labels attached to the goroutine.
// Empty keys and values are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := make([]string, 0, len(labels)*2)
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		if k == "" || labels[k] == "" {
			continue
		}
		pairs = append(pairs, k, labels[k])
	}
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopkeeper/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
)

// httpMetrics holds the HTTP server instruments
type httpMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	in := telemetry.NewInstruments(meter)
	m := &httpMetrics{
		requestTotal: in.Count("http_server_request_total",
			"Total number of HTTP requests", "{request}"),
		requestDuration: in.Seconds("http_server_request_duration_seconds",
			"HTTP request latency distribution in seconds", telemetry.HTTPDurationBuckets),
		activeRequests: in.InFlight("http_server_active_requests",
			"Number of currently active HTTP requests", "{request}"),
	}
	return m, in.Err()
}

// HTTPMetrics records request count, latency and in-flight requests.
// Routes are labelled by pattern, not by path, so session IDs never become labels.
// A nil or disabled provider yields a pass-through middleware.
func HTTPMetrics(mp *telemetry.MeterProvider) gin.HandlerFunc {
	if mp == nil || !mp.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(mp.Meter("http.server"))
}

// HTTPMetricsWithMeter builds the middleware on an existing meter
func HTTPMetricsWithMeter(meter metric.Meter) gin.HandlerFunc {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		m.activeRequests.Add(ctx, 1)
		c.Next()
		m.activeRequests.Add(ctx, -1)

		method := telemetry.AttrHTTPMethod.String(c.Request.Method)
		route := telemetry.AttrHTTPRoute.String(routePattern(c))
		m.requestTotal.Add(ctx, 1, telemetry.With(method, route, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status())))
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), telemetry.With(method, route))
	}
}

// routePattern returns the matched route, e.g. "/api/v1/stock-takes/:id"
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

func passThrough(c *gin.Context) {
	c.Next()
}

package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopkeeper/backend/internal/infrastructure/scheduler"
	"github.com/shopkeeper/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler reports service liveness and dependency state
type HealthHandler struct {
	BaseHandler
	name      string
	storeMode string
	db        Pinger
	scheduler SnapshotScheduler
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. db and sched may be nil.
func NewHealthHandler(name, storeMode string, db Pinger, sched SnapshotScheduler) *HealthHandler {
	return &HealthHandler{
		name:      name,
		storeMode: storeMode,
		db:        db,
		scheduler: sched,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Name      string            `json:"name"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	StoreMode string            `json:"store_mode"`
	Database  string            `json:"database"`
	Scheduler *scheduler.Status `json:"scheduler,omitempty"`
}

// Health godoc
// @Summary      Health check
// @Description  Returns 503 with status "degraded" when the database does not answer.
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		StoreMode: h.storeMode,
		Database:  "disabled",
	}

	if h.db != nil {
		resp.Database = "up"
		if err := pingWithin(c.Request.Context(), h.db, 2*time.Second); err != nil {
			resp.Database = "down"
			resp.Status = "degraded"
		}
	}
	if h.scheduler != nil {
		st := h.scheduler.Status()
		resp.Scheduler = &st
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}

// pingWithin bounds a Ping that takes no context
func pingWithin(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Ping() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

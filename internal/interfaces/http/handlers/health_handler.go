package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports reachability of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides the liveness and readiness endpoints.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates the handler. store is the shared Redis store;
// readiness fails without it because every operation needs it.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// Ready reports whether the service can serve traffic.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{"redis": "ok"}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		checks["redis"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    statusWord(status),
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ready"
	}
	return "unavailable"
}

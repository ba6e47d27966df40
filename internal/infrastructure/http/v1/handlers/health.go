package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks map[string]ReadinessCheck
}

// NewHealthHandler creates a health handler. checks may be empty.
func NewHealthHandler(checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Live handles the liveness probe.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready runs every registered check.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](c.Request.Context()); err != nil {
			results[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "healthy"
	}

	body := gin.H{"status": "ok", "checks": results}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	c.JSON(status, body)
}

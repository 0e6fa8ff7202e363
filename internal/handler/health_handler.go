package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db     *sqlx.DB
	checks map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. Additional dependencies such as
// the session store or the event broker are registered with WithCheck.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db, checks: make(map[string]Pinger)}
}

// WithCheck adds a named readiness check.
func (h *HealthHandler) WithCheck(name string, ping Pinger) *HealthHandler {
	h.checks[name] = ping
	return h
}

// Liveness handles GET /healthz
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
// @Summary Readiness probe
// @Description Reports each dependency; 503 when any is unreachable.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.checks)+1)
	ready := true

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			components["database"] = "database not reachable"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			components[name] = name + " not reachable"
			ready = false
			continue
		}
		components[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "components": components})
}

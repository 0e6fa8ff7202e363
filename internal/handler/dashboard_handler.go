package handler

import (
	"github.com/gin-gonic/gin"

	"regnify/internal/service"
)

// DashboardHandler serves aggregate invoice statistics.
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles GET /api/v1/dashboard/stats
// @Summary Get dashboard statistics
// @Description Invoice counts by status, jurisdiction, type and provider response, plus a 7-day series
// @Tags dashboard
// @Produce json
// @Success 200 {object} Response{data=domain.DashboardStats}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}

// GetQuickStats handles GET /api/v1/dashboard/quick-stats
// @Summary Get quick dashboard statistics
// @Description Invoice totals, today's processing, error rate, user counts, storage and uptime
// @Tags dashboard
// @Produce json
// @Success 200 {object} Response{data=domain.QuickStats}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /dashboard/quick-stats [get]
func (h *DashboardHandler) GetQuickStats(c *gin.Context) {
	stats, err := h.dashboardService.GetQuickStats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}

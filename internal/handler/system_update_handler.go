package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"regnify/internal/domain"
	"regnify/internal/service"
)

// SystemUpdateHandler serves release notes.
type SystemUpdateHandler struct {
	updateService service.SystemUpdateService
}

// NewSystemUpdateHandler creates a new SystemUpdateHandler.
func NewSystemUpdateHandler(updateService service.SystemUpdateService) *SystemUpdateHandler {
	return &SystemUpdateHandler{updateService: updateService}
}

// List handles GET /api/v1/updates
// @Summary List release notes
// @Description Active release notes, newest first.
// @Tags updates
// @Produce json
// @Success 200 {object} Response{data=[]domain.SystemUpdate}
// @Security BearerAuth
// @Router /updates [get]
func (h *SystemUpdateHandler) List(c *gin.Context) {
	h.respondList(c)(h.updateService.List(c.Request.Context()))
}

// ListByType handles GET /api/v1/updates/type/:type
// @Summary List release notes of one type
// @Tags updates
// @Produce json
// @Param type path string true "Update type" Enums(FEATURE, BUG_FIX, ENHANCEMENT, SECURITY, MAINTENANCE)
// @Success 200 {object} Response{data=[]domain.SystemUpdate}
// @Failure 400 {object} ErrorResponseBody "Invalid update type"
// @Security BearerAuth
// @Router /updates/type/{type} [get]
func (h *SystemUpdateHandler) ListByType(c *gin.Context) {
	h.respondList(c)(h.updateService.ListByType(c.Request.Context(), domain.UpdateType(c.Param("type"))))
}

// ListByDateRange handles GET /api/v1/updates/date-range?startDate=&endDate=
// @Summary List release notes in a date range
// @Tags updates
// @Produce json
// @Param startDate query string true "First day (YYYY-MM-DD)"
// @Param endDate query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} Response{data=[]domain.SystemUpdate}
// @Failure 400 {object} ErrorResponseBody "Invalid date range"
// @Security BearerAuth
// @Router /updates/date-range [get]
func (h *SystemUpdateHandler) ListByDateRange(c *gin.Context) {
	h.respondList(c)(h.updateService.ListByDateRange(c.Request.Context(), c.Query("startDate"), c.Query("endDate")))
}

// ListByVersion handles GET /api/v1/updates/version/:version
// @Summary List release notes for a version
// @Tags updates
// @Produce json
// @Param version path string true "Version"
// @Success 200 {object} Response{data=[]domain.SystemUpdate}
// @Security BearerAuth
// @Router /updates/version/{version} [get]
func (h *SystemUpdateHandler) ListByVersion(c *gin.Context) {
	h.respondList(c)(h.updateService.ListByVersion(c.Request.Context(), c.Param("version")))
}

func (h *SystemUpdateHandler) respondList(c *gin.Context) func([]domain.SystemUpdate, error) {
	return func(updates []domain.SystemUpdate, err error) {
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondOK(c, updates)
	}
}

// Create handles POST /api/v1/updates
// @Summary Publish a release note
// @Tags updates
// @Accept json
// @Produce json
// @Param request body SystemUpdateRequest true "Release note"
// @Success 201 {object} Response{data=domain.SystemUpdate} "Release note created"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Security BearerAuth
// @Router /updates [post]
func (h *SystemUpdateHandler) Create(c *gin.Context) {
	var input service.SystemUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	u, err := h.updateService.Create(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, u)
}

// Update handles PUT /api/v1/updates/:id
// @Summary Edit a release note
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Release note ID"
// @Param request body SystemUpdateRequest true "Release note"
// @Success 200 {object} Response{data=domain.SystemUpdate}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 404 {object} ErrorResponseBody "Release note not found"
// @Security BearerAuth
// @Router /updates/{id} [put]
func (h *SystemUpdateHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid system update ID")
		return
	}
	var input service.SystemUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	u, err := h.updateService.Update(c.Request.Context(), id, input, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, u)
}

// Delete handles DELETE /api/v1/updates/:id
// @Summary Withdraw a release note
// @Tags updates
// @Produce json
// @Param id path string true "Release note ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Release note not found"
// @Security BearerAuth
// @Router /updates/{id} [delete]
func (h *SystemUpdateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid system update ID")
		return
	}
	if err := h.updateService.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "system update deleted"})
}

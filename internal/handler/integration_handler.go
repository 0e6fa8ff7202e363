package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"regnify/internal/service"
)

// IntegrationHandler handles service provider configuration endpoints.
type IntegrationHandler struct {
	integrationService service.IntegrationService
}

// NewIntegrationHandler creates a new IntegrationHandler.
func NewIntegrationHandler(integrationService service.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{integrationService: integrationService}
}

func parseConfigID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid integration config ID")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /api/v1/integration/configs
// @Summary List integration configs
// @Tags integration
// @Produce json
// @Success 200 {object} Response{data=[]domain.IntegrationConfig}
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Security BearerAuth
// @Router /integration/configs [get]
func (h *IntegrationHandler) List(c *gin.Context) {
	cfgs, err := h.integrationService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, cfgs)
}

// GetByID handles GET /api/v1/integration/configs/:id
// @Summary Get an integration config
// @Tags integration
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} Response{data=domain.IntegrationConfig}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Config not found"
// @Security BearerAuth
// @Router /integration/configs/{id} [get]
func (h *IntegrationHandler) GetByID(c *gin.Context) {
	id, ok := parseConfigID(c)
	if !ok {
		return
	}
	cfg, err := h.integrationService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, cfg)
}

// GetByProvider handles GET /api/v1/integration/configs/provider/:name
// @Summary Get an integration config by provider name
// @Tags integration
// @Produce json
// @Param name path string true "Service provider name"
// @Success 200 {object} Response{data=domain.IntegrationConfig}
// @Failure 404 {object} ErrorResponseBody "Config not found"
// @Security BearerAuth
// @Router /integration/configs/provider/{name} [get]
func (h *IntegrationHandler) GetByProvider(c *gin.Context) {
	cfg, err := h.integrationService.GetByProvider(c.Request.Context(), c.Param("name"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, cfg)
}

// Create handles POST /api/v1/integration/configs
// @Summary Create an integration config
// @Tags integration
// @Accept json
// @Produce json
// @Param request body IntegrationConfigRequest true "Provider connection"
// @Success 201 {object} Response{data=domain.IntegrationConfig} "Config created"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 409 {object} ErrorResponseBody "Provider already configured"
// @Security BearerAuth
// @Router /integration/configs [post]
func (h *IntegrationHandler) Create(c *gin.Context) {
	var input service.IntegrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cfg, err := h.integrationService.Create(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, cfg)
}

// Update handles PUT /api/v1/integration/configs/:id
// @Summary Replace an integration config
// @Tags integration
// @Accept json
// @Produce json
// @Param id path string true "Config ID"
// @Param request body IntegrationConfigRequest true "Provider connection"
// @Success 200 {object} Response{data=domain.IntegrationConfig}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 404 {object} ErrorResponseBody "Config not found"
// @Failure 409 {object} ErrorResponseBody "Provider already configured"
// @Security BearerAuth
// @Router /integration/configs/{id} [put]
func (h *IntegrationHandler) Update(c *gin.Context) {
	id, ok := parseConfigID(c)
	if !ok {
		return
	}
	var input service.IntegrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cfg, err := h.integrationService.Update(c.Request.Context(), id, input, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, cfg)
}

// Delete handles DELETE /api/v1/integration/configs/:id
// @Summary Deactivate an integration config
// @Tags integration
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Config not found"
// @Security BearerAuth
// @Router /integration/configs/{id} [delete]
func (h *IntegrationHandler) Delete(c *gin.Context) {
	id, ok := parseConfigID(c)
	if !ok {
		return
	}
	if err := h.integrationService.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "integration config deactivated"})
}

// ToggleStatus handles PATCH /api/v1/integration/configs/:id/toggle-status
// @Summary Toggle an integration config on or off
// @Tags integration
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} Response{data=domain.IntegrationConfig}
// @Failure 404 {object} ErrorResponseBody "Config not found"
// @Security BearerAuth
// @Router /integration/configs/{id}/toggle-status [patch]
func (h *IntegrationHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseConfigID(c)
	if !ok {
		return
	}
	cfg, err := h.integrationService.ToggleStatus(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, cfg)
}

// GenerateCredentials handles POST /api/v1/integration/configs/:id/generate-credentials
// @Summary Issue client credentials
// @Description The client secret is returned once and cannot be read back.
// @Tags integration
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} Response{data=GeneratedCredentialsResponse}
// @Failure 404 {object} ErrorResponseBody "Config not found"
// @Security BearerAuth
// @Router /integration/configs/{id}/generate-credentials [post]
func (h *IntegrationHandler) GenerateCredentials(c *gin.Context) {
	id, ok := parseConfigID(c)
	if !ok {
		return
	}
	creds, err := h.integrationService.GenerateCredentials(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, creds)
}

// TestConnection handles POST /api/v1/integration/configs/:id/test-connection
// @Summary Test provider connectivity
// @Tags integration
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Config not found"
// @Failure 502 {object} ErrorResponseBody "Provider unreachable"
// @Security BearerAuth
// @Router /integration/configs/{id}/test-connection [post]
func (h *IntegrationHandler) TestConnection(c *gin.Context) {
	id, ok := parseConfigID(c)
	if !ok {
		return
	}
	msg, err := h.integrationService.TestConnection(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}

// FetchStatus handles POST /api/v1/integration/configs/:id/fetch-status
// @Summary Fetch provider status
// @Tags integration
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Config not found"
// @Failure 502 {object} ErrorResponseBody "Provider unreachable"
// @Security BearerAuth
// @Router /integration/configs/{id}/fetch-status [post]
func (h *IntegrationHandler) FetchStatus(c *gin.Context) {
	id, ok := parseConfigID(c)
	if !ok {
		return
	}
	msg, err := h.integrationService.FetchStatus(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"regnify/internal/middleware"
	"regnify/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /api/v1/auth/login
// @Summary User login
// @Description Authenticate with username and password. Repeated failures lock the account.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=TokenResponse} "Login successful"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Invalid credentials"
// @Failure 423 {object} ErrorResponseBody "Account locked"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), input, service.Actor{
		Username:  input.Username,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, tokens)
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} Response{data=TokenResponse} "Token refreshed"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input service.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, tokens)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Log out
// @Description Revoke the current access token.
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, err := middleware.GetClaims(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims, actorFrom(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "logged out"})
}

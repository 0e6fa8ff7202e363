package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"regnify/internal/domain"
	"regnify/internal/middleware"
	"regnify/internal/service"
)

// UserHandler handles user management endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/v1/users
// @Summary Create a user
// @Description Create a user account and send a welcome email
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User details"
// @Success 201 {object} Response{data=domain.User} "User created"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Failure 409 {object} ErrorResponseBody "Username or email taken"
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var input service.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.userService.Create(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, user)
}

// GetByID handles GET /api/v1/users/:id
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} Response{data=domain.User}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, user)
}

// GetByUsername handles GET /api/v1/users/username/:username
// @Summary Get a user by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} Response{data=domain.User}
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/username/{username} [get]
func (h *UserHandler) GetByUsername(c *gin.Context) {
	user, err := h.userService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, user)
}

// List handles GET /api/v1/users
// @Summary List users
// @Tags users
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.User}
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	users, total, err := h.userService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, users, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Update handles PUT /api/v1/users/:id
// @Summary Update a user
// @Description Update profile fields. Changing the role requires ADMIN_MODERATOR.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} Response{data=domain.User}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Failure 409 {object} ErrorResponseBody "Username or email taken"
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	var input service.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, input, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, user)
}

// Delete handles DELETE /api/v1/users/:id
// @Summary Deactivate a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "user deactivated"})
}

// ToggleStatus handles PATCH /api/v1/users/:id/toggle-status
// @Summary Toggle a user between active and inactive
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} Response{data=domain.User}
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id}/toggle-status [patch]
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.ToggleStatus(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, user)
}

// ChangeRole handles PATCH /api/v1/users/:id/change-role?role=
// @Summary Change a user's role
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Param role query string true "New role" Enums(ADMIN_MODERATOR, SUPER_USER, VIEWER)
// @Success 200 {object} Response{data=domain.User}
// @Failure 400 {object} ErrorResponseBody "Invalid role"
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id}/change-role [patch]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	role := domain.UserRole(strings.ToUpper(strings.TrimSpace(c.Query("role"))))
	if role == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "role query parameter is required")
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), id, role, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, user)
}

// ResetPassword handles PUT /api/v1/users/:id/password
// @Summary Reset a user's password
// @Description Set a new password and clear any login lockout
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id}/password [put]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	var input service.ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), id, input.Password, actorFrom(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "password reset"})
}

// Unlock handles POST /api/v1/users/:id/unlock
// @Summary Unlock a locked account
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id}/unlock [post]
func (h *UserHandler) Unlock(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.userService.Unlock(c.Request.Context(), id, actorFrom(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "account unlocked"})
}

// Search handles GET /api/v1/users/search?query=
// @Summary Search users
// @Description Match username, email or name. Returns at most 10 users.
// @Tags users
// @Produce json
// @Param query query string true "Search text"
// @Success 200 {object} Response{data=[]domain.User}
// @Failure 400 {object} ErrorResponseBody "Missing query"
// @Security BearerAuth
// @Router /users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("query")
	if strings.TrimSpace(q) == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "query parameter is required")
		return
	}
	users, err := h.userService.Search(c.Request.Context(), q)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, users)
}

// Active handles GET /api/v1/users/active
// @Summary List active users
// @Tags users
// @Produce json
// @Success 200 {object} Response{data=[]domain.User}
// @Security BearerAuth
// @Router /users/active [get]
func (h *UserHandler) Active(c *gin.Context) {
	users, err := h.userService.Active(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, users)
}

// Count handles GET /api/v1/users/count
// @Summary Count users
// @Tags users
// @Produce json
// @Success 200 {object} Response{data=CountResponse}
// @Security BearerAuth
// @Router /users/count [get]
func (h *UserHandler) Count(c *gin.Context) {
	n, err := h.userService.Count(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, CountResponse{Count: n})
}

// ActiveCount handles GET /api/v1/users/active-count
// @Summary Count active users
// @Tags users
// @Produce json
// @Success 200 {object} Response{data=CountResponse}
// @Security BearerAuth
// @Router /users/active-count [get]
func (h *UserHandler) ActiveCount(c *gin.Context) {
	n, err := h.userService.ActiveCount(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, CountResponse{Count: n})
}

// Me handles GET /api/v1/users/me
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} Response{data=domain.User}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	id, err := middleware.GetUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, user)
}

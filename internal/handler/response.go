package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"regnify/internal/domain"
	"regnify/internal/middleware"
	"regnify/internal/service"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrMissingDate):
		return http.StatusBadRequest, "MISSING_DATE", "document date and processing date are required"
	case errors.Is(err, domain.ErrDuplicateInvoiceNumber):
		return http.StatusConflict, "DUPLICATE_INVOICE_NUMBER", "invoice number already exists"
	case errors.Is(err, domain.ErrInvoiceDeleted):
		return http.StatusConflict, "INVOICE_DELETED", "invoice has been deleted"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found"
	case errors.Is(err, domain.ErrNoFileAttached):
		return http.StatusNotFound, "NO_FILE_ATTACHED", "no file attached to this invoice"
	case errors.Is(err, domain.ErrInvalidJurisdiction):
		return http.StatusBadRequest, "INVALID_JURISDICTION", "invalid jurisdiction"
	case errors.Is(err, domain.ErrInvalidDocumentType):
		return http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "invalid document type"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: xml, json, csv, xls, xlsx, pdf"
	case errors.Is(err, domain.ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE", "file is empty"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "INVALID_ROLE", "invalid user role"
	case errors.Is(err, domain.ErrInvalidUserStatus):
		return http.StatusBadRequest, "INVALID_USER_STATUS", "invalid user status"
	case errors.Is(err, domain.ErrInvalidUsername):
		return http.StatusBadRequest, "INVALID_USERNAME", "username must be 3-50 letters, digits or underscores"
	case errors.Is(err, domain.ErrPasswordTooShort):
		return http.StatusBadRequest, "PASSWORD_TOO_SHORT", "password must be at least 8 characters"
	case errors.Is(err, domain.ErrIntegrationNotFound):
		return http.StatusNotFound, "INTEGRATION_NOT_FOUND", "integration config not found"
	case errors.Is(err, domain.ErrDuplicateProvider):
		return http.StatusConflict, "DUPLICATE_PROVIDER", "service provider already configured"
	case errors.Is(err, domain.ErrInvalidAuthType):
		return http.StatusBadRequest, "INVALID_AUTH_TYPE", "invalid auth type"
	case errors.Is(err, domain.ErrInvalidFrequency):
		return http.StatusBadRequest, "INVALID_FREQUENCY", "invalid send frequency"
	case errors.Is(err, domain.ErrInvalidSendingTime):
		return http.StatusBadRequest, "INVALID_SENDING_TIME", "sending time must be HH:MM"
	case errors.Is(err, domain.ErrConnectionFailed):
		return http.StatusBadGateway, "CONNECTION_FAILED", err.Error()
	case errors.Is(err, domain.ErrStatusFetchFailed):
		return http.StatusBadGateway, "STATUS_FETCH_FAILED", err.Error()
	case errors.Is(err, domain.ErrSystemUpdateNotFound):
		return http.StatusNotFound, "SYSTEM_UPDATE_NOT_FOUND", "system update not found"
	case errors.Is(err, domain.ErrInvalidUpdateType):
		return http.StatusBadRequest, "INVALID_UPDATE_TYPE", "invalid update type"
	case errors.Is(err, domain.ErrInvalidDateRange):
		return http.StatusBadRequest, "INVALID_DATE_RANGE", "dates must be YYYY-MM-DD with start not after end"
	case errors.Is(err, domain.ErrInvalidUpdateDate):
		return http.StatusBadRequest, "INVALID_UPDATE_DATE", "update date must be YYYY-MM-DD"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusLocked, "ACCOUNT_LOCKED", "account is locked; try again later"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict, "DUPLICATE_USERNAME", "username already exists"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already exists"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}

// actorFrom builds the audit actor for the authenticated request.
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		Username:  middleware.GetUsername(c),
		Role:      domain.UserRole(middleware.GetRole(c)),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

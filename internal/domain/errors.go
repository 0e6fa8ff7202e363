package domain

import "errors"

var (
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountLocked          = errors.New("account is locked")
	ErrUserInactive           = errors.New("user is inactive")
	ErrDuplicateUsername      = errors.New("username already exists")
	ErrDuplicateEmail         = errors.New("email already exists")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile              = errors.New("file is empty")
	ErrUploadFailed           = errors.New("file upload to storage failed")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")
	ErrInvoiceDeleted         = errors.New("invoice has been deleted")
	ErrNoFileAttached         = errors.New("no file attached to this invoice")
	ErrMissingDate            = errors.New("document date and processing date are required")
	ErrInvalidJurisdiction    = errors.New("invalid jurisdiction")
	ErrInvalidDocumentType    = errors.New("invalid document type")
	ErrInvalidRole            = errors.New("invalid user role")
	ErrInvalidUserStatus      = errors.New("invalid user status")
	ErrInvalidUsername        = errors.New("username must be 3-50 letters, digits or underscores")
	ErrPasswordTooShort       = errors.New("password must be at least 8 characters")
	ErrIntegrationNotFound    = errors.New("integration config not found")
	ErrDuplicateProvider      = errors.New("service provider already configured")
	ErrInvalidAuthType        = errors.New("invalid auth type")
	ErrInvalidFrequency       = errors.New("invalid send frequency")
	ErrInvalidSendingTime     = errors.New("sending time must be HH:MM")
	ErrConnectionFailed       = errors.New("connection test failed")
	ErrStatusFetchFailed      = errors.New("status fetch failed")
	ErrSystemUpdateNotFound   = errors.New("system update not found")
	ErrInvalidUpdateType      = errors.New("invalid update type")
	ErrInvalidUpdateDate      = errors.New("update date must be YYYY-MM-DD")
	ErrInvalidDateRange       = errors.New("dates must be YYYY-MM-DD with start not after end")
)

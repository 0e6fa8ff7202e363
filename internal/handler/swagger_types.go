package handler

import (
	"time"

	"regnify/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// UploadInvoiceForm documents the multipart fields of an invoice upload.
type UploadInvoiceForm struct {
	InvoiceNumber string `json:"invoice_number" example:"FR123456"`
	DocDate       string `json:"doc_date" example:"2025-06-01"`
	ProDate       string `json:"pro_date" example:"2025-06-02"`
	Sender        string `json:"sender" example:"Vendeur SA"`
	Receiver      string `json:"receiver" example:"Client SARL"`
	Jurisdiction  string `json:"jurisdiction" example:"FRANCE"`
	DocumentType  string `json:"document_type" example:"INVOICE"`
}

// UpdateInvoiceRequest represents the invoice update request body.
type UpdateInvoiceRequest struct {
	DocDate      *string `json:"doc_date" example:"2025-06-01"`
	ProDate      *string `json:"pro_date" example:"2025-06-03"`
	Sender       *string `json:"sender" example:"Acme GmbH"`
	Receiver     *string `json:"receiver" example:"Buyer AG"`
	Jurisdiction *string `json:"jurisdiction" example:"GERMANY"`
	DocumentType *string `json:"document_type" example:"CREDIT_NOTE"`
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	Username  string          `json:"username" binding:"required" example:"jane_doe"`
	Email     string          `json:"email" binding:"required" example:"jane.doe@regnify.com"`
	Password  string          `json:"password" binding:"required" example:"securepassword123"`
	FirstName string          `json:"first_name" binding:"required" example:"Jane"`
	LastName  string          `json:"last_name" example:"Doe"`
	Role      domain.UserRole `json:"role" binding:"required" example:"VIEWER"`
}

// UpdateUserRequest represents the update user request body.
type UpdateUserRequest struct {
	Username  *string            `json:"username" example:"jane_smith"`
	Email     *string            `json:"email" example:"jane.smith@regnify.com"`
	Password  *string            `json:"password" example:"anotherpassword"`
	FirstName *string            `json:"first_name" example:"Jane"`
	LastName  *string            `json:"last_name" example:"Smith"`
	Role      *domain.UserRole   `json:"role" example:"SUPER_USER"`
	Status    *domain.UserStatus `json:"status" example:"ACTIVE"`
}

// ResetPasswordRequest represents the password reset request body.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required" example:"brand-new-pass"`
}

// IntegrationConfigRequest represents the integration config create and update body.
type IntegrationConfigRequest struct {
	ServiceProviderName string               `json:"service_provider_name" binding:"required" example:"PEPPOL Gateway"`
	SendEndpointURL     string               `json:"send_endpoint_url" binding:"required" example:"https://gateway.example.com/invoices"`
	FetchEndpointURL    string               `json:"fetch_endpoint_url" binding:"required" example:"https://gateway.example.com/status"`
	AuthType            domain.AuthType      `json:"auth_type" binding:"required" example:"API_KEY"`
	Username            string               `json:"username" example:"regnify"`
	Password            string               `json:"password" example:"secret"`
	APIKey              string               `json:"api_key" example:"k-123"`
	AccessToken         string               `json:"access_token" example:"eyJhbGciOi..."`
	RefreshToken        string               `json:"refresh_token" example:"eyJhbGciOi..."`
	TokenExpiry         *time.Time           `json:"token_expiry" example:"2026-01-01T00:00:00Z"`
	EnableDailySending  bool                 `json:"enable_daily_sending" example:"true"`
	SendingTime         string               `json:"sending_time" example:"09:00"`
	Frequency           domain.SendFrequency `json:"frequency" example:"DAILY"`
	IsActive            *bool                `json:"is_active" example:"true"`
}

// SystemUpdateRequest represents the release note create and update body.
type SystemUpdateRequest struct {
	Title       string            `json:"title" binding:"required" example:"Austrian format rules"`
	Description string            `json:"description" example:"Invoices for Austria are now validated."`
	UpdateDate  string            `json:"update_date" binding:"required" example:"2025-06-01"`
	Type        domain.UpdateType `json:"type" binding:"required" example:"FEATURE"`
	Version     string            `json:"version" example:"1.4.0"`
}

// --- Response Types ---

// TokenResponse represents the authentication token response.
type TokenResponse struct {
	AccessToken  string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string       `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string       `json:"token_type" example:"Bearer"`
	ExpiresAt    time.Time    `json:"expires_at" example:"2025-01-15T10:30:00Z"`
	ExpiresIn    int64        `json:"expires_in" example:"900"`
	User         *domain.User `json:"user,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string            `json:"status" example:"ok"`
	Components map[string]string `json:"components,omitempty"`
}

// DownloadURLResponse carries a presigned link to an invoice file.
type DownloadURLResponse struct {
	DownloadURL string `json:"download_url" example:"https://storage.example.com/invoices/abc.pdf?X-Amz-Signature=..."`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// CountResponse carries a single count.
type CountResponse struct {
	Count int64 `json:"count" example:"42"`
}

// GeneratedCredentialsResponse is returned once when client credentials are issued.
type GeneratedCredentialsResponse struct {
	ClientKey    string `json:"client_key" example:"CLIENT_1A2B3C4D"`
	ClientSecret string `json:"client_secret" example:"9f1c2b7e4a..."`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

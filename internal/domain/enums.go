package domain

// ProcessingStatus is the technical processing axis of an invoice.
type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "PENDING"
	ProcessingInProgress ProcessingStatus = "PROCESSING"
	ProcessingComplete   ProcessingStatus = "COMPLETE"
	ProcessingError      ProcessingStatus = "ERROR"
	ProcessingRejected   ProcessingStatus = "REJECTED"
)

// BusinessStatus is the business review axis of an invoice.
type BusinessStatus string

const (
	BusinessPendingReview BusinessStatus = "PENDING_REVIEW"
	BusinessApproved      BusinessStatus = "APPROVED"
	BusinessRejected      BusinessStatus = "REJECTED"
	BusinessUnderReview   BusinessStatus = "UNDER_REVIEW"
	BusinessEscalated     BusinessStatus = "ESCALATED"
)

// ProviderResponse is the provider-response axis of an invoice.
type ProviderResponse string

const (
	ProviderPending ProviderResponse = "PENDING"
	ProviderSuccess ProviderResponse = "SUCCESS"
	ProviderFailed  ProviderResponse = "FAILED"
	ProviderTimeout ProviderResponse = "TIMEOUT"
	ProviderRetry   ProviderResponse = "RETRY"
)

// ValidProcessingStatuses is used to validate list filters.
var ValidProcessingStatuses = map[ProcessingStatus]bool{
	ProcessingPending:    true,
	ProcessingInProgress: true,
	ProcessingComplete:   true,
	ProcessingError:      true,
	ProcessingRejected:   true,
}

// Jurisdiction selects the additional format rules applied to an invoice.
// The empty Jurisdiction means "unset".
type Jurisdiction string

const (
	JurisdictionGermany     Jurisdiction = "GERMANY"
	JurisdictionFrance      Jurisdiction = "FRANCE"
	JurisdictionUK          Jurisdiction = "UK"
	JurisdictionSpain       Jurisdiction = "SPAIN"
	JurisdictionItaly       Jurisdiction = "ITALY"
	JurisdictionNetherlands Jurisdiction = "NETHERLANDS"
	JurisdictionBelgium     Jurisdiction = "BELGIUM"
	JurisdictionSwitzerland Jurisdiction = "SWITZERLAND"
	JurisdictionAustria     Jurisdiction = "AUSTRIA"
	JurisdictionOther       Jurisdiction = "OTHER"
)

// Jurisdictions lists every enumerated jurisdiction in declaration order.
var Jurisdictions = []Jurisdiction{
	JurisdictionGermany,
	JurisdictionFrance,
	JurisdictionUK,
	JurisdictionSpain,
	JurisdictionItaly,
	JurisdictionNetherlands,
	JurisdictionBelgium,
	JurisdictionSwitzerland,
	JurisdictionAustria,
	JurisdictionOther,
}

// IsValid reports whether j is one of the enumerated jurisdictions.
func (j Jurisdiction) IsValid() bool {
	for _, known := range Jurisdictions {
		if j == known {
			return true
		}
	}
	return false
}

// DocumentType classifies the uploaded document.
type DocumentType string

const (
	DocumentTypeInvoice      DocumentType = "INVOICE"
	DocumentTypeCreditNote   DocumentType = "CREDIT_NOTE"
	DocumentTypeDebitNote    DocumentType = "DEBIT_NOTE"
	DocumentTypeReceipt      DocumentType = "RECEIPT"
	DocumentTypeStatement    DocumentType = "STATEMENT"
	DocumentTypeOrder        DocumentType = "ORDER"
	DocumentTypeDeliveryNote DocumentType = "DELIVERY_NOTE"
)

// ValidDocumentTypes is the set of accepted document types.
var ValidDocumentTypes = map[DocumentType]bool{
	DocumentTypeInvoice:      true,
	DocumentTypeCreditNote:   true,
	DocumentTypeDebitNote:    true,
	DocumentTypeReceipt:      true,
	DocumentTypeStatement:    true,
	DocumentTypeOrder:        true,
	DocumentTypeDeliveryNote: true,
}

// AllowedExtensions maps accepted attachment extensions (without dot) to their MIME type.
var AllowedExtensions = map[string]string{
	"xml":  "application/xml",
	"json": "application/json",
	"csv":  "text/csv",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pdf":  "application/pdf",
}

// UserRole defines what a user may do with invoices.
type UserRole string

const (
	RoleAdminModerator UserRole = "ADMIN_MODERATOR"
	RoleSuperUser      UserRole = "SUPER_USER"
	RoleViewer         UserRole = "VIEWER"
)

// UserStatus is the account state of a user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// AuditAction names an audited operation.
type AuditAction string

const (
	AuditInvoiceUpload  AuditAction = "INVOICE_UPLOAD"
	AuditInvoiceUpdate  AuditAction = "INVOICE_UPDATE"
	AuditInvoiceDelete  AuditAction = "INVOICE_DELETE"
	AuditInvoiceProcess AuditAction = "INVOICE_PROCESS"
	AuditLoginSuccess   AuditAction = "LOGIN_SUCCESS"
	AuditLoginFailed    AuditAction = "LOGIN_FAILED"
	AuditLogout         AuditAction = "LOGOUT"

	AuditUserCreate       AuditAction = "USER_CREATE"
	AuditUserUpdate       AuditAction = "USER_UPDATE"
	AuditUserDelete       AuditAction = "USER_DELETE"
	AuditUserStatusChange AuditAction = "USER_STATUS_CHANGE"
	AuditUserRoleChange   AuditAction = "USER_ROLE_CHANGE"
	AuditAccountUnlock    AuditAction = "ACCOUNT_UNLOCK"
	AuditPasswordReset    AuditAction = "PASSWORD_RESET"

	AuditIntegrationCreate       AuditAction = "INTEGRATION_CONFIG_CREATE"
	AuditIntegrationUpdate       AuditAction = "INTEGRATION_CONFIG_UPDATE"
	AuditIntegrationDelete       AuditAction = "INTEGRATION_CONFIG_DELETE"
	AuditIntegrationStatusChange AuditAction = "INTEGRATION_CONFIG_STATUS_CHANGE"
	AuditCredentialsGenerate     AuditAction = "CREDENTIALS_GENERATE"
	AuditConnectionTest          AuditAction = "CONNECTION_TEST"
	AuditStatusFetch             AuditAction = "STATUS_FETCH"
	AuditScheduledSend           AuditAction = "SCHEDULED_SEND"

	AuditSystemUpdateCreate AuditAction = "SYSTEM_UPDATE_CREATE"
	AuditSystemUpdateUpdate AuditAction = "SYSTEM_UPDATE_UPDATE"
	AuditSystemUpdateDelete AuditAction = "SYSTEM_UPDATE_DELETE"
)

// Audit entity types.
const (
	AuditEntityInvoice           = "INVOICE"
	AuditEntityUser              = "USER"
	AuditEntityIntegrationConfig = "INTEGRATION_CONFIG"
	AuditEntitySystemUpdate      = "SYSTEM_UPDATE"
)

// ValidUserStatuses is the set of assignable account states.
var ValidUserStatuses = map[UserStatus]bool{
	UserStatusActive:    true,
	UserStatusInactive:  true,
	UserStatusSuspended: true,
}

// AuthType selects how requests to a service provider are authenticated.
type AuthType string

const (
	AuthBasic       AuthType = "BASIC"
	AuthAPIKey      AuthType = "API_KEY"
	AuthOAuth2      AuthType = "OAUTH2"
	AuthBearerToken AuthType = "BEARER_TOKEN"
	AuthCustom      AuthType = "CUSTOM"
)

// ValidAuthTypes is the set of accepted auth types.
var ValidAuthTypes = map[AuthType]bool{
	AuthBasic:       true,
	AuthAPIKey:      true,
	AuthOAuth2:      true,
	AuthBearerToken: true,
	AuthCustom:      true,
}

// SendFrequency is how often invoices are pushed to a service provider.
type SendFrequency string

const (
	FrequencyHourly  SendFrequency = "HOURLY"
	FrequencyDaily   SendFrequency = "DAILY"
	FrequencyWeekly  SendFrequency = "WEEKLY"
	FrequencyMonthly SendFrequency = "MONTHLY"
	FrequencyManual  SendFrequency = "MANUAL"
)

// ValidFrequencies is the set of accepted send frequencies.
var ValidFrequencies = map[SendFrequency]bool{
	FrequencyHourly:  true,
	FrequencyDaily:   true,
	FrequencyWeekly:  true,
	FrequencyMonthly: true,
	FrequencyManual:  true,
}

// Sync statuses recorded on an integration config.
const (
	SyncConnected           = "CONNECTED"
	SyncDisconnected        = "DISCONNECTED"
	SyncSuccess             = "SYNC_SUCCESS"
	SyncFailed              = "SYNC_FAILED"
	SyncScheduledSendOK     = "SCHEDULED_SEND_SUCCESS"
	SyncScheduledSendFailed = "SCHEDULED_SEND_FAILED"
)

// UpdateType classifies a release note.
type UpdateType string

const (
	UpdateFeature     UpdateType = "FEATURE"
	UpdateBugFix      UpdateType = "BUG_FIX"
	UpdateEnhancement UpdateType = "ENHANCEMENT"
	UpdateSecurity    UpdateType = "SECURITY"
	UpdateMaintenance UpdateType = "MAINTENANCE"
)

// ValidUpdateTypes is the set of accepted release note types.
var ValidUpdateTypes = map[UpdateType]bool{
	UpdateFeature:     true,
	UpdateBugFix:      true,
	UpdateEnhancement: true,
	UpdateSecurity:    true,
	UpdateMaintenance: true,
}

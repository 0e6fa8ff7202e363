package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"regnify/internal/domain"
	"regnify/internal/port"
)

const (
	defaultSendingTime = "09:00"
	maxProviderBody    = 1 << 20
	scheduledBatchSize = 500
)

var sendingTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// SchedulerActor is recorded as the performer of scheduled sends.
var SchedulerActor = Actor{Username: "system"}

// IntegrationInput is the DTO for creating or replacing an integration config.
type IntegrationInput struct {
	ServiceProviderName string               `json:"service_provider_name" binding:"required,max=255"`
	SendEndpointURL     string               `json:"send_endpoint_url" binding:"required,url"`
	FetchEndpointURL    string               `json:"fetch_endpoint_url" binding:"required,url"`
	AuthType            domain.AuthType      `json:"auth_type" binding:"required"`
	Username            string               `json:"username"`
	Password            string               `json:"password"`
	APIKey              string               `json:"api_key"`
	AccessToken         string               `json:"access_token"`
	RefreshToken        string               `json:"refresh_token"`
	TokenExpiry         *time.Time           `json:"token_expiry"`
	EnableDailySending  bool                 `json:"enable_daily_sending"`
	SendingTime         string               `json:"sending_time"`
	Frequency           domain.SendFrequency `json:"frequency"`
	IsActive            *bool                `json:"is_active"`
}

// GeneratedCredentials holds a freshly issued client key and secret. The
// secret is only ever returned here; the store keeps its hash.
type GeneratedCredentials struct {
	ClientKey    string `json:"client_key"`
	ClientSecret string `json:"client_secret"`
}

// IntegrationService manages service provider connections.
type IntegrationService interface {
	List(ctx context.Context) ([]domain.IntegrationConfig, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.IntegrationConfig, error)
	GetByProvider(ctx context.Context, name string) (*domain.IntegrationConfig, error)
	Create(ctx context.Context, input IntegrationInput, actor Actor) (*domain.IntegrationConfig, error)
	Update(ctx context.Context, id uuid.UUID, input IntegrationInput, actor Actor) (*domain.IntegrationConfig, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	ToggleStatus(ctx context.Context, id uuid.UUID, actor Actor) (*domain.IntegrationConfig, error)
	GenerateCredentials(ctx context.Context, id uuid.UUID, actor Actor) (*GeneratedCredentials, error)
	TestConnection(ctx context.Context, id uuid.UUID, actor Actor) (string, error)
	FetchStatus(ctx context.Context, id uuid.UUID, actor Actor) (string, error)
	SendScheduled(ctx context.Context, cfg domain.IntegrationConfig) error
}

type integrationService struct {
	repo        port.IntegrationRepository
	invoiceRepo port.InvoiceRepository
	auditRepo   port.AuditRepository
	client      *http.Client
	now         func() time.Time
}

// NewIntegrationService creates a new IntegrationService. Provider calls use
// client, which should carry a timeout.
func NewIntegrationService(
	repo port.IntegrationRepository,
	invoiceRepo port.InvoiceRepository,
	auditRepo port.AuditRepository,
	client *http.Client,
) IntegrationService {
	return &integrationService{
		repo:        repo,
		invoiceRepo: invoiceRepo,
		auditRepo:   auditRepo,
		client:      client,
		now:         time.Now,
	}
}

func (s *integrationService) List(ctx context.Context) ([]domain.IntegrationConfig, error) {
	return s.repo.List(ctx)
}

func (s *integrationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.IntegrationConfig, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *integrationService) GetByProvider(ctx context.Context, name string) (*domain.IntegrationConfig, error) {
	return s.repo.GetByProvider(ctx, name)
}

func (s *integrationService) Create(ctx context.Context, input IntegrationInput, actor Actor) (*domain.IntegrationConfig, error) {
	cfg := &domain.IntegrationConfig{IsActive: true, CreatedBy: actor.Username}
	if err := applyIntegrationInput(cfg, input); err != nil {
		return nil, err
	}
	cfg.UpdatedBy = actor.Username

	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, err
	}
	s.audit(ctx, domain.AuditIntegrationCreate, cfg, actor, "",
		"Integration config created for "+cfg.ServiceProviderName, "")
	return cfg, nil
}

func (s *integrationService) Update(ctx context.Context, id uuid.UUID, input IntegrationInput, actor Actor) (*domain.IntegrationConfig, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := cfg.ServiceProviderName
	if err := applyIntegrationInput(cfg, input); err != nil {
		return nil, err
	}
	cfg.UpdatedBy = actor.Username

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	s.audit(ctx, domain.AuditIntegrationUpdate, cfg, actor, "Provider: "+old,
		"Integration config updated for "+cfg.ServiceProviderName, "")
	return cfg, nil
}

// Delete deactivates the config. Configs are never removed.
func (s *integrationService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	cfg.IsActive = false
	cfg.UpdatedBy = actor.Username
	if err := s.repo.Update(ctx, cfg); err != nil {
		return err
	}
	s.audit(ctx, domain.AuditIntegrationDelete, cfg, actor, "",
		"Integration config deactivated for "+cfg.ServiceProviderName, "")
	return nil
}

func (s *integrationService) ToggleStatus(ctx context.Context, id uuid.UUID, actor Actor) (*domain.IntegrationConfig, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg.IsActive = !cfg.IsActive
	cfg.UpdatedBy = actor.Username
	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	s.audit(ctx, domain.AuditIntegrationStatusChange, cfg, actor,
		fmt.Sprintf("Status: %t", !cfg.IsActive), fmt.Sprintf("Status: %t", cfg.IsActive), "")
	return cfg, nil
}

// GenerateCredentials issues a new client key and secret, replacing any
// previous pair.
func (s *integrationService) GenerateCredentials(ctx context.Context, id uuid.UUID, actor Actor) (*GeneratedCredentials, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	creds := &GeneratedCredentials{
		ClientKey:    "CLIENT_" + strings.ToUpper(uuid.NewString()[:8]),
		ClientSecret: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.ClientSecret), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("integrationService.GenerateCredentials: hashing secret: %w", err)
	}
	cfg.ClientKey = creds.ClientKey
	cfg.ClientSecretHash = string(hash)
	cfg.UpdatedBy = actor.Username

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	s.audit(ctx, domain.AuditCredentialsGenerate, cfg, actor, "",
		"Credentials generated for "+cfg.ServiceProviderName, "")
	return creds, nil
}

// TestConnection checks that both provider endpoints answer and records the
// outcome on the config.
func (s *integrationService) TestConnection(ctx context.Context, id uuid.UUID, actor Actor) (string, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	_, err = s.get(ctx, cfg, cfg.SendEndpointURL)
	if err == nil {
		_, err = s.get(ctx, cfg, cfg.FetchEndpointURL)
	}
	if err != nil {
		s.recordSync(ctx, cfg, domain.SyncDisconnected, err.Error())
		s.audit(ctx, domain.AuditConnectionTest, cfg, actor, "", "", err.Error())
		return "", fmt.Errorf("%w: %s", domain.ErrConnectionFailed, err)
	}

	s.recordSync(ctx, cfg, domain.SyncConnected, "")
	s.audit(ctx, domain.AuditConnectionTest, cfg, actor, "", "Connection test successful", "")
	return "Connection test successful. Send endpoint: OK, Fetch endpoint: OK", nil
}

// FetchStatus pulls the provider's status document from the fetch endpoint.
func (s *integrationService) FetchStatus(ctx context.Context, id uuid.UUID, actor Actor) (string, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	body, err := s.get(ctx, cfg, cfg.FetchEndpointURL)
	if err != nil {
		s.recordSync(ctx, cfg, domain.SyncFailed, err.Error())
		s.audit(ctx, domain.AuditStatusFetch, cfg, actor, "", "", err.Error())
		return "", fmt.Errorf("%w: %s", domain.ErrStatusFetchFailed, err)
	}

	s.recordSync(ctx, cfg, domain.SyncSuccess, "")
	s.audit(ctx, domain.AuditStatusFetch, cfg, actor, "", "Status fetch successful", "")
	return "Status fetch successful: " + string(body), nil
}

type scheduledBatch struct {
	Provider string           `json:"provider"`
	SentAt   time.Time        `json:"sent_at"`
	Invoices []domain.Invoice `json:"invoices"`
}

// SendScheduled pushes completed invoices still awaiting a provider response
// to the send endpoint and records the result on cfg. A rejected batch marks
// its invoices FAILED; a transport error leaves them pending for the next run.
func (s *integrationService) SendScheduled(ctx context.Context, cfg domain.IntegrationConfig) error {
	invoices, _, err := s.invoiceRepo.List(ctx, domain.InvoiceFilter{
		Status:           domain.ProcessingComplete,
		ProviderResponse: domain.ProviderPending,
	}, 0, scheduledBatchSize)
	if err != nil {
		return fmt.Errorf("integrationService.SendScheduled: %w", err)
	}

	sendErr := s.postBatch(ctx, &cfg, invoices)
	if sendErr == nil || sendErr.rejected {
		resp := domain.ProviderSuccess
		if sendErr != nil {
			resp = domain.ProviderFailed
		}
		for _, inv := range invoices {
			if err := s.invoiceRepo.UpdateProviderResponse(ctx, inv.ID, resp); err != nil {
				log.Printf("integrationService.SendScheduled: invoice %s: %v", inv.ID, err)
			}
		}
	}

	if sendErr != nil {
		s.recordSync(ctx, &cfg, domain.SyncScheduledSendFailed, sendErr.Error())
		s.audit(ctx, domain.AuditScheduledSend, &cfg, SchedulerActor, "", "", sendErr.Error())
		return fmt.Errorf("integrationService.SendScheduled: %s: %w", cfg.ServiceProviderName, sendErr)
	}
	s.recordSync(ctx, &cfg, domain.SyncScheduledSendOK, "")
	s.audit(ctx, domain.AuditScheduledSend, &cfg, SchedulerActor, "",
		fmt.Sprintf("Sent %d invoices to %s", len(invoices), cfg.ServiceProviderName), "")
	return nil
}

type sendError struct {
	err      error
	rejected bool
}

func (e *sendError) Error() string { return e.err.Error() }
func (e *sendError) Unwrap() error { return e.err }

func (s *integrationService) postBatch(ctx context.Context, cfg *domain.IntegrationConfig, invoices []domain.Invoice) *sendError {
	if len(invoices) == 0 {
		return nil
	}
	payload, err := json.Marshal(scheduledBatch{
		Provider: cfg.ServiceProviderName,
		SentAt:   s.now().UTC(),
		Invoices: invoices,
	})
	if err != nil {
		return &sendError{err: fmt.Errorf("encoding batch: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.SendEndpointURL, bytes.NewReader(payload))
	if err != nil {
		return &sendError{err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	setAuthHeader(req, cfg)

	resp, err := s.client.Do(req)
	if err != nil {
		return &sendError{err: fmt.Errorf("sending batch: %w", err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxProviderBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &sendError{err: fmt.Errorf("send endpoint returned %d", resp.StatusCode), rejected: true}
	}
	return nil
}

func (s *integrationService) get(ctx context.Context, cfg *domain.IntegrationConfig, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	setAuthHeader(req, cfg)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}
	return body, nil
}

// setAuthHeader applies the provider credentials. CUSTOM configs send none.
func setAuthHeader(req *http.Request, cfg *domain.IntegrationConfig) {
	switch cfg.AuthType {
	case domain.AuthBasic:
		creds := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		req.Header.Set("Authorization", "Basic "+creds)
	case domain.AuthAPIKey:
		req.Header.Set("Authorization", "ApiKey "+cfg.APIKey)
	case domain.AuthBearerToken, domain.AuthOAuth2:
		req.Header.Set("Authorization", "Bearer "+cfg.AccessToken)
	}
}

func (s *integrationService) recordSync(ctx context.Context, cfg *domain.IntegrationConfig, status, errs string) {
	res := domain.SyncResult{Status: status, Errors: errs, At: s.now()}
	if err := s.repo.RecordSync(ctx, cfg.ID, res); err != nil {
		log.Printf("integrationService: recording sync for %s: %v", cfg.ServiceProviderName, err)
		return
	}
	cfg.SyncStatus = status
	cfg.SyncErrors = errs
	if errs == "" {
		at := res.At
		cfg.LastSyncAt = &at
	}
}

func (s *integrationService) audit(ctx context.Context, action domain.AuditAction, cfg *domain.IntegrationConfig, actor Actor, oldValue, newValue, errMsg string) {
	id := cfg.ID
	entry := &domain.AuditLog{
		Action:       action,
		EntityType:   domain.AuditEntityIntegrationConfig,
		EntityID:     &id,
		OldValue:     oldValue,
		NewValue:     newValue,
		ErrorMessage: errMsg,
	}
	if errMsg != "" {
		entry.Status = auditFailed
	}
	recordAudit(ctx, s.auditRepo, "integrationService", actor, entry)
}

func applyIntegrationInput(cfg *domain.IntegrationConfig, in IntegrationInput) error {
	if !domain.ValidAuthTypes[in.AuthType] {
		return domain.ErrInvalidAuthType
	}
	freq := in.Frequency
	if freq == "" {
		freq = domain.FrequencyDaily
	}
	if !domain.ValidFrequencies[freq] {
		return domain.ErrInvalidFrequency
	}
	sendingTime := in.SendingTime
	if sendingTime == "" {
		sendingTime = defaultSendingTime
	}
	if !sendingTimePattern.MatchString(sendingTime) {
		return domain.ErrInvalidSendingTime
	}

	cfg.ServiceProviderName = strings.TrimSpace(in.ServiceProviderName)
	cfg.SendEndpointURL = in.SendEndpointURL
	cfg.FetchEndpointURL = in.FetchEndpointURL
	cfg.AuthType = in.AuthType
	cfg.Username = in.Username
	cfg.Password = in.Password
	cfg.APIKey = in.APIKey
	cfg.AccessToken = in.AccessToken
	cfg.RefreshToken = in.RefreshToken
	cfg.TokenExpiry = in.TokenExpiry
	cfg.EnableDailySending = in.EnableDailySending
	cfg.SendingTime = sendingTime
	cfg.Frequency = freq
	if in.IsActive != nil {
		cfg.IsActive = *in.IsActive
	}
	return nil
}

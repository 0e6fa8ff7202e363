package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"regnify/internal/config"
	"regnify/internal/domain"
	"regnify/internal/lifecycle"
	"regnify/internal/metrics"
	"regnify/internal/notify"
	"regnify/internal/port"
	"regnify/internal/validator"
	"regnify/internal/validator/invoice"
)

// Audit entry statuses.
const (
	auditSuccess = "SUCCESS"
	auditFailed  = "FAILED"
)

// Actor identifies who performs an operation and from where, for audit entries.
type Actor struct {
	Username  string
	Role      domain.UserRole
	IPAddress string
	UserAgent string
}

// FileInput is an attachment supplied with an upload.
type FileInput struct {
	Name string
	Size int64
	Body io.Reader
}

// UploadInvoiceInput is the DTO for creating an invoice.
type UploadInvoiceInput struct {
	InvoiceNumber  string
	DocumentDate   time.Time
	ProcessingDate time.Time
	Sender         string
	Receiver       string
	Jurisdiction   domain.Jurisdiction
	DocumentType   domain.DocumentType
	File           *FileInput
}

// UpdateInvoiceInput carries the editable fields. Nil fields keep their value.
// The invoice number is immutable.
type UpdateInvoiceInput struct {
	DocumentDate   *time.Time           `json:"doc_date"`
	ProcessingDate *time.Time           `json:"pro_date"`
	Sender         *string              `json:"sender"`
	Receiver       *string              `json:"receiver"`
	Jurisdiction   *domain.Jurisdiction `json:"jurisdiction"`
	DocumentType   *domain.DocumentType `json:"document_type"`
}

// InvoiceResult pairs a stored invoice with the validation run that produced its status.
type InvoiceResult struct {
	Invoice    *domain.Invoice   `json:"invoice"`
	Validation validator.Outcome `json:"validation"`
}

// InvoiceService defines the invoice management contract.
type InvoiceService interface {
	Upload(ctx context.Context, input *UploadInvoiceInput, actor Actor) (*InvoiceResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Invoice, error)
	Update(ctx context.Context, id uuid.UUID, input *UpdateInvoiceInput, actor Actor) (*InvoiceResult, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	Process(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Invoice, error)
	Revalidate(ctx context.Context, id uuid.UUID) (*InvoiceResult, error)
	GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	AuditTrail(ctx context.Context, id uuid.UUID, offset, limit int) ([]domain.AuditLog, int, error)
}

type invoiceService struct {
	invoiceRepo port.InvoiceRepository
	userRepo    port.UserRepository
	auditRepo   port.AuditRepository
	storage     port.ObjectStorage
	email       port.EmailSender
	events      port.EventPublisher
	engine      *validator.Engine
	dispatcher  *notify.Dispatcher
	metrics     *metrics.Metrics
	cfg         *config.S3Config
	now         func() time.Time
}

// InvoiceDeps groups the collaborators of the invoice service.
type InvoiceDeps struct {
	InvoiceRepo port.InvoiceRepository
	UserRepo    port.UserRepository
	AuditRepo   port.AuditRepository
	Storage     port.ObjectStorage
	Email       port.EmailSender
	Events      port.EventPublisher
	Engine      *validator.Engine
	Dispatcher  *notify.Dispatcher
	Metrics     *metrics.Metrics
	S3          *config.S3Config
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(deps InvoiceDeps) InvoiceService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &invoiceService{
		invoiceRepo: deps.InvoiceRepo,
		userRepo:    deps.UserRepo,
		auditRepo:   deps.AuditRepo,
		storage:     deps.Storage,
		email:       deps.Email,
		events:      deps.Events,
		engine:      deps.Engine,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		cfg:         deps.S3,
		now:         now,
	}
}

func (s *invoiceService) Upload(ctx context.Context, input *UploadInvoiceInput, actor Actor) (*InvoiceResult, error) {
	if input.DocumentType == "" {
		input.DocumentType = domain.DocumentTypeInvoice
	}
	if err := checkClassification(input.Jurisdiction, input.DocumentType); err != nil {
		return nil, err
	}

	var ext, contentType string
	if input.File != nil {
		var err error
		if ext, contentType, err = s.checkFile(input.File); err != nil {
			return nil, err
		}
	}

	exists, err := s.invoiceRepo.ExistsByNumber(ctx, input.InvoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.Upload: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateInvoiceNumber
	}

	now := s.now()
	inv := &domain.Invoice{
		ID:             uuid.New(),
		InvoiceNumber:  input.InvoiceNumber,
		DocumentDate:   input.DocumentDate,
		ProcessingDate: input.ProcessingDate,
		Sender:         input.Sender,
		Receiver:       input.Receiver,
		DocumentType:   input.DocumentType,
		UploadedBy:     actor.Username,
	}
	if input.Jurisdiction != "" {
		j := input.Jurisdiction
		inv.Jurisdiction = &j
	}
	if input.File != nil {
		name, size := input.File.Name, input.File.Size
		inv.FileName = &name
		inv.FileSize = &size
		inv.FileContentType = &contentType
	}
	lifecycle.Init(inv, now)

	outcome, err := s.validate(ctx, inv)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ApplyValidation(inv, outcome, now); err != nil {
		return nil, err
	}

	if input.File != nil {
		key := port.InvoiceObjectKey(inv.ID, input.File.Name)
		log.Printf("invoiceService.Upload: uploading %s (%s, %s, %d bytes) by %s",
			input.File.Name, ext, contentType, input.File.Size, actor.Username)
		if _, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.Bucket,
			Key:         key,
			Body:        input.File.Body,
			ContentType: contentType,
			Size:        input.File.Size,
			Metadata: map[string]string{
				"invoice-number": inv.InvoiceNumber,
				"uploaded-by":    actor.Username,
			},
		}); err != nil {
			log.Printf("invoiceService.Upload: storage upload failed for %s: %v", inv.InvoiceNumber, err)
			return nil, domain.ErrUploadFailed
		}
		bucket := s.cfg.Bucket
		inv.FileBucket = &bucket
		inv.FileKey = &key
	}

	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		if inv.HasFile() {
			if delErr := s.storage.Delete(ctx, *inv.FileBucket, *inv.FileKey); delErr != nil {
				log.Printf("invoiceService.Upload: cleanup of %s failed: %v", *inv.FileKey, delErr)
			}
		}
		if errors.Is(err, domain.ErrDuplicateInvoiceNumber) {
			return nil, err
		}
		return nil, fmt.Errorf("invoiceService.Upload: %w", err)
	}

	s.audit(ctx, domain.AuditInvoiceUpload, inv, actor)
	s.publish(inv, port.EventInvoiceValidated, actor.Username)
	s.notifyUploader(inv)

	return &InvoiceResult{Invoice: inv, Validation: outcome}, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Deleted {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.List(ctx, filter, offset, limit)
}

func (s *invoiceService) Search(ctx context.Context, query string, limit int) ([]domain.Invoice, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Invoice{}, nil
	}
	return s.invoiceRepo.Search(ctx, query, limit)
}

func (s *invoiceService) Update(ctx context.Context, id uuid.UUID, input *UpdateInvoiceInput, actor Actor) (*InvoiceResult, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Deleted {
		return nil, domain.ErrInvoiceDeleted
	}

	if input.DocumentDate != nil {
		inv.DocumentDate = *input.DocumentDate
	}
	if input.ProcessingDate != nil {
		inv.ProcessingDate = *input.ProcessingDate
	}
	if input.Sender != nil {
		inv.Sender = *input.Sender
	}
	if input.Receiver != nil {
		inv.Receiver = *input.Receiver
	}
	if input.Jurisdiction != nil {
		if *input.Jurisdiction == "" {
			inv.Jurisdiction = nil
		} else {
			j := *input.Jurisdiction
			inv.Jurisdiction = &j
		}
	}
	if input.DocumentType != nil {
		inv.DocumentType = *input.DocumentType
	}
	jurisdiction := domain.Jurisdiction("")
	if inv.Jurisdiction != nil {
		jurisdiction = *inv.Jurisdiction
	}
	if err := checkClassification(jurisdiction, inv.DocumentType); err != nil {
		return nil, err
	}

	result, err := s.revalidate(ctx, inv)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditInvoiceUpdate, inv, actor)
	s.publish(inv, port.EventInvoiceValidated, actor.Username)
	return result, nil
}

// Revalidate re-runs validation on a stored invoice with the current rules.
func (s *invoiceService) Revalidate(ctx context.Context, id uuid.UUID) (*InvoiceResult, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Deleted {
		return nil, domain.ErrInvoiceDeleted
	}
	return s.revalidate(ctx, inv)
}

func (s *invoiceService) revalidate(ctx context.Context, inv *domain.Invoice) (*InvoiceResult, error) {
	outcome, err := s.validate(ctx, inv)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ApplyValidation(inv, outcome, s.now()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("invoiceService.revalidate: %w", err)
	}
	return &InvoiceResult{Invoice: inv, Validation: outcome}, nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	if err := lifecycle.SoftDelete(inv, actor.Username, now); err != nil {
		return err
	}
	if err := s.invoiceRepo.SoftDelete(ctx, inv.ID, actor.Username, now); err != nil {
		return fmt.Errorf("invoiceService.Delete: %w", err)
	}

	s.audit(ctx, domain.AuditInvoiceDelete, inv, actor)
	s.publish(inv, port.EventInvoiceDeleted, actor.Username)
	return nil
}

func (s *invoiceService) Process(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Process(inv, actor.Username, s.now()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("invoiceService.Process: %w", err)
	}

	s.audit(ctx, domain.AuditInvoiceProcess, inv, actor)
	s.publish(inv, port.EventInvoiceProcessed, actor.Username)
	return inv, nil
}

func (s *invoiceService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !inv.HasFile() {
		return "", domain.ErrNoFileAttached
	}
	name := filepath.Base(*inv.FileKey)
	if inv.FileName != nil {
		name = *inv.FileName
	}
	expiry := time.Duration(s.cfg.PresignExpiry) * time.Second
	url, err := s.storage.GetDownloadURL(ctx, *inv.FileBucket, *inv.FileKey, name, expiry)
	if err != nil {
		return "", fmt.Errorf("invoiceService.GetDownloadURL: %w", err)
	}
	return url, nil
}

func (s *invoiceService) AuditTrail(ctx context.Context, id uuid.UUID, offset, limit int) ([]domain.AuditLog, int, error) {
	return s.auditRepo.ListByEntity(ctx, domain.AuditEntityInvoice, id, offset, limit)
}

func (s *invoiceService) validate(ctx context.Context, inv *domain.Invoice) (validator.Outcome, error) {
	outcome, err := s.engine.Evaluate(ctx, invoice.FromInvoice(inv))
	if err != nil {
		return validator.Outcome{}, err
	}
	violations := outcome.Violations()
	keys := make([]string, 0, len(violations))
	for _, v := range violations {
		keys = append(keys, v.RuleKey)
	}
	jurisdiction := ""
	if inv.Jurisdiction != nil {
		jurisdiction = string(*inv.Jurisdiction)
	}
	s.metrics.ObserveValidation(jurisdiction, outcome.Passed(), outcome.Score(), keys)
	return outcome, nil
}

func (s *invoiceService) checkFile(f *FileInput) (ext, contentType string, err error) {
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	contentType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", "", domain.ErrUnsupportedFileType
	}
	if f.Size <= 0 {
		return "", "", domain.ErrEmptyFile
	}
	if maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024; maxBytes > 0 && f.Size > maxBytes {
		return "", "", domain.ErrFileTooLarge
	}
	return ext, contentType, nil
}

func checkClassification(j domain.Jurisdiction, dt domain.DocumentType) error {
	if j != "" && !j.IsValid() {
		return domain.ErrInvalidJurisdiction
	}
	if !domain.ValidDocumentTypes[dt] {
		return domain.ErrInvalidDocumentType
	}
	return nil
}

// audit records an entry. Failures are logged and never fail the operation.
func (s *invoiceService) audit(ctx context.Context, action domain.AuditAction, inv *domain.Invoice, actor Actor) {
	id := inv.ID
	entry := &domain.AuditLog{
		ID:          uuid.New(),
		Action:      action,
		EntityType:  domain.AuditEntityInvoice,
		EntityID:    &id,
		PerformedBy: actor.Username,
		PerformedAt: s.now(),
		Status:      auditSuccess,
		NewValue:    fmt.Sprintf("invoice_number=%s status=%s score=%d", inv.InvoiceNumber, inv.Status, inv.ValidationScore),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("invoiceService.audit: %s on %s: %v", action, inv.InvoiceNumber, err)
	}
}

func (s *invoiceService) publish(inv *domain.Invoice, eventType, actor string) {
	event := port.InvoiceEvent{
		Type:             eventType,
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		Status:           string(inv.Status),
		BusinessStatus:   string(inv.BusinessStatus),
		ProviderResponse: string(inv.ProviderResponse),
		ValidationScore:  inv.ValidationScore,
		ValidationErrors: inv.ValidationErrors,
		Actor:            actor,
		OccurredAt:       s.now(),
	}
	s.dispatcher.Go(eventType, func(ctx context.Context) error {
		err := s.events.Publish(ctx, event)
		s.metrics.IncrementNotification("event", err)
		return err
	})
}

// notifyUploader emails the uploader the validation result.
func (s *invoiceService) notifyUploader(inv *domain.Invoice) {
	snapshot := *inv
	s.dispatcher.Go("upload email", func(ctx context.Context) error {
		user, err := s.userRepo.GetByUsername(ctx, snapshot.UploadedBy)
		if err != nil {
			return fmt.Errorf("looking up uploader %s: %w", snapshot.UploadedBy, err)
		}
		if user.Email == "" {
			return nil
		}
		if snapshot.Status == domain.ProcessingComplete {
			err = s.email.SendInvoiceProcessedEmail(ctx, user.Email, &snapshot)
		} else {
			err = s.email.SendInvoiceValidationFailedEmail(ctx, user.Email, &snapshot)
		}
		s.metrics.IncrementNotification("email", err)
		return err
	})
}

package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"regnify/internal/config"
	"regnify/internal/domain"
	"regnify/internal/notify"
	"regnify/internal/port"
	"regnify/internal/service"
	"regnify/internal/validator"
	"regnify/mocks"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type invoiceFixture struct {
	svc        service.InvoiceService
	invoices   *mocks.MockInvoiceRepo
	users      *mocks.MockUserRepo
	audit      *mocks.MockAuditRepo
	storage    *mocks.MockObjectStorage
	email      *mocks.MockEmailSender
	events     *mocks.MockEventPublisher
	dispatcher *notify.Dispatcher
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	registry, err := validator.NewRegistry()
	require.NoError(t, err)
	clock := func() time.Time { return fixedNow }

	f := &invoiceFixture{
		invoices:   new(mocks.MockInvoiceRepo),
		users:      new(mocks.MockUserRepo),
		audit:      new(mocks.MockAuditRepo),
		storage:    new(mocks.MockObjectStorage),
		email:      new(mocks.MockEmailSender),
		events:     new(mocks.MockEventPublisher),
		dispatcher: notify.NewDispatcher(2, time.Second),
	}
	f.svc = service.NewInvoiceService(service.InvoiceDeps{
		InvoiceRepo: f.invoices,
		UserRepo:    f.users,
		AuditRepo:   f.audit,
		Storage:     f.storage,
		Email:       f.email,
		Events:      f.events,
		Engine:      validator.NewEngine(registry, validator.WithClock(clock)),
		Dispatcher:  f.dispatcher,
		S3:          &config.S3Config{Bucket: "regnify-test", MaxFileSizeMB: 1, PresignExpiry: 600},
		Now:         clock,
	})
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *invoiceFixture) expectNotifications(eventType string) {
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(e port.InvoiceEvent) bool {
		return e.Type == eventType
	})).Return(nil)
}

func validUpload() *service.UploadInvoiceInput {
	return &service.UploadInvoiceInput{
		InvoiceNumber:  "INV-1",
		DocumentDate:   fixedNow.AddDate(0, 0, -2),
		ProcessingDate: fixedNow.AddDate(0, 0, -1),
		Sender:         "Acme",
		Receiver:       "Globex",
	}
}

var alice = service.Actor{Username: "alice", IPAddress: "10.0.0.1", UserAgent: "test"}

func TestInvoiceService_Upload_Valid(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("ExistsByNumber", mock.Anything, "INV-1").Return(false, nil)
	f.invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.users.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{Username: "alice", Email: "alice@example.com"}, nil)
	f.email.On("SendInvoiceProcessedEmail", mock.Anything, "alice@example.com", mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.expectNotifications(port.EventInvoiceValidated)

	result, err := f.svc.Upload(context.Background(), validUpload(), alice)
	require.NoError(t, err)
	f.dispatcher.Wait()

	inv := result.Invoice
	assert.True(t, result.Validation.Passed())
	assert.Equal(t, 100, inv.ValidationScore)
	assert.Empty(t, inv.ValidationErrors)
	assert.Equal(t, domain.ProcessingComplete, inv.Status)
	assert.Equal(t, domain.BusinessApproved, inv.BusinessStatus)
	assert.Equal(t, domain.ProviderSuccess, inv.ProviderResponse)
	assert.Equal(t, domain.DocumentTypeInvoice, inv.DocumentType)
	assert.Equal(t, "alice", inv.UploadedBy)
	assert.Nil(t, inv.Jurisdiction)
	assert.False(t, inv.HasFile())

	f.invoices.AssertExpectations(t)
	f.email.AssertExpectations(t)
	f.events.AssertExpectations(t)
	f.audit.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(e *domain.AuditLog) bool {
		return e.Action == domain.AuditInvoiceUpload && e.IPAddress == "10.0.0.1"
	}))
}

func TestInvoiceService_Upload_InvalidIsStoredAndReported(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("ExistsByNumber", mock.Anything, "123").Return(false, nil)
	f.invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.users.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{Username: "alice", Email: "alice@example.com"}, nil)
	f.email.On("SendInvoiceValidationFailedEmail", mock.Anything, "alice@example.com", mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.expectNotifications(port.EventInvoiceValidated)

	input := validUpload()
	input.InvoiceNumber = "123"
	input.Jurisdiction = domain.JurisdictionGermany

	result, err := f.svc.Upload(context.Background(), input, alice)
	require.NoError(t, err)
	f.dispatcher.Wait()

	inv := result.Invoice
	assert.False(t, result.Validation.Passed())
	assert.Equal(t, 80, inv.ValidationScore)
	assert.Equal(t, "German companies must end with GmbH, AG or KG; German invoices must have 10-digit invoice number", inv.ValidationErrors)
	assert.Equal(t, domain.ProcessingError, inv.Status)
	assert.Equal(t, domain.BusinessRejected, inv.BusinessStatus)
	assert.Equal(t, domain.ProviderFailed, inv.ProviderResponse)
	require.NotNil(t, inv.Jurisdiction)
	assert.Equal(t, domain.JurisdictionGermany, *inv.Jurisdiction)

	f.email.AssertExpectations(t)
	f.email.AssertNotCalled(t, "SendInvoiceProcessedEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Upload_NotificationFailureDoesNotFail(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("ExistsByNumber", mock.Anything, "INV-1").Return(false, nil)
	f.invoices.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	result, err := f.svc.Upload(context.Background(), validUpload(), alice)
	require.NoError(t, err)
	f.dispatcher.Wait()
	assert.True(t, result.Validation.Passed())
}

func TestInvoiceService_Upload_Duplicate(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("ExistsByNumber", mock.Anything, "INV-1").Return(true, nil)

	_, err := f.svc.Upload(context.Background(), validUpload(), alice)
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoiceNumber)
	f.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_Upload_MissingDate(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("ExistsByNumber", mock.Anything, "INV-1").Return(false, nil)

	input := validUpload()
	input.ProcessingDate = time.Time{}

	_, err := f.svc.Upload(context.Background(), input, alice)
	assert.ErrorIs(t, err, domain.ErrMissingDate)
	f.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_Upload_InvalidClassification(t *testing.T) {
	f := newInvoiceFixture(t)

	input := validUpload()
	input.Jurisdiction = "ATLANTIS"
	_, err := f.svc.Upload(context.Background(), input, alice)
	assert.ErrorIs(t, err, domain.ErrInvalidJurisdiction)

	input = validUpload()
	input.DocumentType = "MEMO"
	_, err = f.svc.Upload(context.Background(), input, alice)
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentType)
}

func TestInvoiceService_Upload_FileChecks(t *testing.T) {
	tests := []struct {
		name string
		file *service.FileInput
		want error
	}{
		{"unsupported extension", &service.FileInput{Name: "scan.exe", Size: 10}, domain.ErrUnsupportedFileType},
		{"no extension", &service.FileInput{Name: "scan", Size: 10}, domain.ErrUnsupportedFileType},
		{"empty", &service.FileInput{Name: "scan.pdf", Size: 0}, domain.ErrEmptyFile},
		{"too large", &service.FileInput{Name: "scan.pdf", Size: 2 * 1024 * 1024}, domain.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInvoiceFixture(t)
			input := validUpload()
			input.File = tt.file
			_, err := f.svc.Upload(context.Background(), input, alice)
			assert.ErrorIs(t, err, tt.want)
			f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceService_Upload_WithFile(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("ExistsByNumber", mock.Anything, "INV-1").Return(false, nil)
	f.invoices.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{Email: ""}, nil)
	f.expectNotifications(port.EventInvoiceValidated)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "regnify-test" &&
			strings.HasPrefix(in.Key, "invoices/") && strings.HasSuffix(in.Key, "/Invoice.PDF") &&
			in.ContentType == "application/pdf" && in.Size == 4
	})).Return(&port.UploadOutput{Location: "s3://x"}, nil)

	input := validUpload()
	input.File = &service.FileInput{Name: "Invoice.PDF", Size: 4, Body: strings.NewReader("%PDF")}

	result, err := f.svc.Upload(context.Background(), input, alice)
	require.NoError(t, err)
	f.dispatcher.Wait()

	inv := result.Invoice
	require.True(t, inv.HasFile())
	assert.Equal(t, port.InvoiceObjectKey(inv.ID, "Invoice.PDF"), *inv.FileKey)
	assert.Equal(t, "Invoice.PDF", *inv.FileName)
	assert.Equal(t, "application/pdf", *inv.FileContentType)
	f.storage.AssertExpectations(t)
}

func TestInvoiceService_Upload_StorageFailure(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("ExistsByNumber", mock.Anything, "INV-1").Return(false, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 down"))

	input := validUpload()
	input.File = &service.FileInput{Name: "a.xml", Size: 3, Body: strings.NewReader("<a>")}

	_, err := f.svc.Upload(context.Background(), input, alice)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_Upload_LostRaceCleansUpFile(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("ExistsByNumber", mock.Anything, "INV-1").Return(false, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.invoices.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateInvoiceNumber)
	f.storage.On("Delete", mock.Anything, "regnify-test", mock.AnythingOfType("string")).Return(nil)

	input := validUpload()
	input.File = &service.FileInput{Name: "a.json", Size: 2, Body: strings.NewReader("{}")}

	_, err := f.svc.Upload(context.Background(), input, alice)
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoiceNumber)
	f.storage.AssertExpectations(t)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func storedInvoice() *domain.Invoice {
	j := domain.JurisdictionGermany
	return &domain.Invoice{
		ID:               uuid.New(),
		InvoiceNumber:    "123",
		DocumentDate:     fixedNow.AddDate(0, 0, -2),
		ProcessingDate:   fixedNow.AddDate(0, 0, -1),
		Sender:           "Acme",
		Receiver:         "Globex",
		Jurisdiction:     &j,
		DocumentType:     domain.DocumentTypeInvoice,
		Status:           domain.ProcessingError,
		BusinessStatus:   domain.BusinessRejected,
		ProviderResponse: domain.ProviderFailed,
		ValidationScore:  80,
		UploadedBy:       "alice",
	}
}

func TestInvoiceService_GetByID_DeletedIsNotFound(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := storedInvoice()
	inv.Deleted = true
	f.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

	_, err := f.svc.GetByID(context.Background(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestInvoiceService_Update_Revalidates(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := storedInvoice()
	f.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("Update", mock.Anything, inv).Return(nil)
	f.expectNotifications(port.EventInvoiceValidated)

	sender := "Acme GmbH"
	result, err := f.svc.Update(context.Background(), inv.ID, &service.UpdateInvoiceInput{Sender: &sender}, alice)
	require.NoError(t, err)
	f.dispatcher.Wait()

	assert.Equal(t, 90, result.Invoice.ValidationScore)
	assert.Equal(t, "German invoices must have 10-digit invoice number", result.Invoice.ValidationErrors)
	assert.Equal(t, "123", result.Invoice.InvoiceNumber)

	france := domain.JurisdictionFrance
	result, err = f.svc.Update(context.Background(), inv.ID, &service.UpdateInvoiceInput{Jurisdiction: &france}, alice)
	require.NoError(t, err)
	assert.Equal(t, 90, result.Invoice.ValidationScore)
	assert.Equal(t, "French invoices must start with 'FR' followed by numbers", result.Invoice.ValidationErrors)

	none := domain.Jurisdiction("")
	result, err = f.svc.Update(context.Background(), inv.ID, &service.UpdateInvoiceInput{Jurisdiction: &none}, alice)
	require.NoError(t, err)
	f.dispatcher.Wait()
	assert.Equal(t, 100, result.Invoice.ValidationScore)
	assert.Equal(t, domain.ProcessingComplete, result.Invoice.Status)
	assert.Nil(t, result.Invoice.Jurisdiction)
}

func TestInvoiceService_Update_Deleted(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := storedInvoice()
	inv.Deleted = true
	f.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

	sender := "x"
	_, err := f.svc.Update(context.Background(), inv.ID, &service.UpdateInvoiceInput{Sender: &sender}, alice)
	assert.ErrorIs(t, err, domain.ErrInvoiceDeleted)
	f.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestInvoiceService_Delete(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := storedInvoice()
	f.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("SoftDelete", mock.Anything, inv.ID, "alice", fixedNow).Return(nil).Once()
	f.expectNotifications(port.EventInvoiceDeleted)

	require.NoError(t, f.svc.Delete(context.Background(), inv.ID, alice))
	f.dispatcher.Wait()
	assert.True(t, inv.Deleted)
	require.NotNil(t, inv.DeletedBy)
	assert.Equal(t, "alice", *inv.DeletedBy)
	assert.Equal(t, domain.ProcessingError, inv.Status)

	err := f.svc.Delete(context.Background(), inv.ID, alice)
	assert.ErrorIs(t, err, domain.ErrInvoiceDeleted)
	f.invoices.AssertNumberOfCalls(t, "SoftDelete", 1)
	f.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestInvoiceService_Delete_ConcurrentDeleteWins(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := storedInvoice()
	f.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("SoftDelete", mock.Anything, inv.ID, "alice", fixedNow).Return(domain.ErrInvoiceDeleted)

	err := f.svc.Delete(context.Background(), inv.ID, alice)
	assert.ErrorIs(t, err, domain.ErrInvoiceDeleted)
	f.dispatcher.Wait()
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestInvoiceService_Process_Deleted(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := storedInvoice()
	f.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("SoftDelete", mock.Anything, inv.ID, "alice", fixedNow).Return(nil)
	f.expectNotifications(port.EventInvoiceDeleted)
	require.NoError(t, f.svc.Delete(context.Background(), inv.ID, alice))
	f.dispatcher.Wait()

	_, err := f.svc.Process(context.Background(), inv.ID, service.Actor{Username: "mod"})
	assert.ErrorIs(t, err, domain.ErrInvoiceDeleted)
	assert.Equal(t, domain.ProcessingError, inv.Status)
	assert.Equal(t, domain.BusinessRejected, inv.BusinessStatus)
	assert.Equal(t, domain.ProviderFailed, inv.ProviderResponse)
	assert.Nil(t, inv.ProcessedBy)
	f.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestInvoiceService_Process_DeletedWhileProcessing(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := storedInvoice()
	f.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("Update", mock.Anything, inv).Return(domain.ErrInvoiceDeleted)

	_, err := f.svc.Process(context.Background(), inv.ID, service.Actor{Username: "mod"})
	assert.ErrorIs(t, err, domain.ErrInvoiceDeleted)
	f.dispatcher.Wait()
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestInvoiceService_Process(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := storedInvoice()
	f.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("Update", mock.Anything, inv).Return(nil)
	f.expectNotifications(port.EventInvoiceProcessed)

	got, err := f.svc.Process(context.Background(), inv.ID, service.Actor{Username: "mod"})
	require.NoError(t, err)
	f.dispatcher.Wait()

	assert.Equal(t, domain.ProcessingComplete, got.Status)
	assert.Equal(t, domain.BusinessApproved, got.BusinessStatus)
	assert.Equal(t, domain.ProviderSuccess, got.ProviderResponse)
	assert.Equal(t, 80, got.ValidationScore)
	require.NotNil(t, got.ProcessedBy)
	assert.Equal(t, "mod", *got.ProcessedBy)
	assert.Equal(t, fixedNow, *got.ProcessedAt)
}

func TestInvoiceService_GetDownloadURL(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := storedInvoice()
	f.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

	_, err := f.svc.GetDownloadURL(context.Background(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrNoFileAttached)

	withFile := storedInvoice()
	bucket, key, name := "regnify-test", "invoices/x/a.pdf", "a.pdf"
	withFile.FileBucket, withFile.FileKey, withFile.FileName = &bucket, &key, &name
	f.invoices.On("GetByID", mock.Anything, withFile.ID).Return(withFile, nil)
	f.storage.On("GetDownloadURL", mock.Anything, bucket, key, name, 600*time.Second).Return("https://signed", nil)

	url, err := f.svc.GetDownloadURL(context.Background(), withFile.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)
}

func TestInvoiceService_Search_BlankQuery(t *testing.T) {
	f := newInvoiceFixture(t)
	got, err := f.svc.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	f.invoices.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

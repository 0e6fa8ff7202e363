package handler_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"regnify/internal/domain"
	"regnify/internal/export"
	"regnify/internal/handler"
	"regnify/internal/middleware"
	"regnify/internal/service"
	"regnify/internal/validator"
	"regnify/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newInvoiceContext(method, target string, body *bytes.Buffer, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = &bytes.Buffer{}
	}
	c.Request, _ = http.NewRequest(method, target, body)
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	c.Set(middleware.ContextKeyUsername, "alice")
	return c, w
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestInvoiceHandler_Upload_Success(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	body, ct := multipartBody(t, map[string]string{
		"invoice_number": "1234567890",
		"doc_date":       "2025-06-01",
		"pro_date":       "2025-06-02",
		"sender":         "Acme GmbH",
		"receiver":       "Buyer AG",
		"jurisdiction":   "germany",
	}, "invoice.pdf", []byte("%PDF-1.4"))

	result := &service.InvoiceResult{
		Invoice:    &domain.Invoice{ID: uuid.New(), InvoiceNumber: "1234567890", Status: domain.ProcessingPending},
		Validation: validator.NewOutcome(nil),
	}
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in *service.UploadInvoiceInput) bool {
		return in.InvoiceNumber == "1234567890" &&
			in.Jurisdiction == domain.JurisdictionGermany &&
			in.DocumentDate.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) &&
			in.File != nil && in.File.Name == "invoice.pdf" && in.File.Size == 8
	}), mock.MatchedBy(func(a service.Actor) bool { return a.Username == "alice" })).Return(result, nil)

	c, w := newInvoiceContext(http.MethodPost, "/api/v1/invoices", body, ct)
	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Upload_WithoutFile(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	body, ct := multipartBody(t, map[string]string{
		"invoice_number": "FR123",
		"doc_date":       "2025-06-01",
		"pro_date":       "2025-06-01",
		"sender":         "Vendeur SA",
		"receiver":       "Client SARL",
	}, "", nil)

	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in *service.UploadInvoiceInput) bool {
		return in.File == nil && in.Jurisdiction == ""
	}), mock.Anything).Return(&service.InvoiceResult{Invoice: &domain.Invoice{InvoiceNumber: "FR123"}}, nil)

	c, w := newInvoiceContext(http.MethodPost, "/api/v1/invoices", body, ct)
	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Upload_InvalidDate(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	body, ct := multipartBody(t, map[string]string{
		"invoice_number": "1234567890",
		"doc_date":       "01/06/2025",
	}, "", nil)

	c, w := newInvoiceContext(http.MethodPost, "/api/v1/invoices", body, ct)
	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Upload_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing date", domain.ErrMissingDate, http.StatusBadRequest, "MISSING_DATE"},
		{"duplicate", domain.ErrDuplicateInvoiceNumber, http.StatusConflict, "DUPLICATE_INVOICE_NUMBER"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"unsupported", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"storage", domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockInvoiceService)
			h := handler.NewInvoiceHandler(svc)
			svc.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			body, ct := multipartBody(t, map[string]string{"invoice_number": "X1"}, "", nil)
			c, w := newInvoiceContext(http.MethodPost, "/api/v1/invoices", body, ct)
			h.Upload(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestInvoiceHandler_Upload_KeepsNumberAsSupplied(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	body, ct := multipartBody(t, map[string]string{
		"invoice_number": " FR123",
		"doc_date":       "2025-06-01",
		"pro_date":       "2025-06-01",
		"jurisdiction":   "france",
	}, "", nil)

	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in *service.UploadInvoiceInput) bool {
		return in.InvoiceNumber == " FR123"
	}), mock.Anything).Return(&service.InvoiceResult{Invoice: &domain.Invoice{InvoiceNumber: " FR123"}}, nil)

	c, w := newInvoiceContext(http.MethodPost, "/api/v1/invoices", body, ct)
	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Upload_BlankNumber(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	body, ct := multipartBody(t, map[string]string{"invoice_number": "   "}, "", nil)
	c, w := newInvoiceContext(http.MethodPost, "/api/v1/invoices", body, ct)
	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeResponse(t, w).Error.Code)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_GetByID(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	id := uuid.New()

	svc.On("GetByID", mock.Anything, id).Return(&domain.Invoice{ID: id, InvoiceNumber: "UK12345678"}, nil)

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices/"+id.String(), nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_GetByID_InvalidID(t *testing.T) {
	h := handler.NewInvoiceHandler(new(mocks.MockInvoiceService))

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices/nope", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeResponse(t, w).Error.Code)
}

func TestInvoiceHandler_GetByID_NotFound(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

	c, w := newInvoiceContext(http.MethodGet, "/", nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "INVOICE_NOT_FOUND", decodeResponse(t, w).Error.Code)
}

func TestInvoiceHandler_List_Filters(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f domain.InvoiceFilter) bool {
		return f.Jurisdiction == domain.JurisdictionFrance &&
			f.Status == domain.ProcessingError &&
			f.StartDate != nil && f.StartDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	}), 40, 20).Return([]domain.Invoice{{InvoiceNumber: "FR1"}}, 41, nil)

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices?jurisdiction=france&status=error&start_date=2025-01-01&offset=40", nil, "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 41, resp.Meta.Total)
	assert.Equal(t, 40, resp.Meta.Offset)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_List_InvalidFilter(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices?jurisdiction=XX", nil, "")
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Search_RequiresQuery(t *testing.T) {
	h := handler.NewInvoiceHandler(new(mocks.MockInvoiceService))

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices/search?q=%20", nil, "")
	h.Search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_Search(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	svc.On("Search", mock.Anything, "acme", 5).Return([]domain.Invoice{{Sender: "Acme GmbH"}}, nil)

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices/search?q=acme&limit=5", nil, "")
	h.Search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Update(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	id := uuid.New()

	svc.On("Update", mock.Anything, id, mock.MatchedBy(func(in *service.UpdateInvoiceInput) bool {
		return in.Sender != nil && *in.Sender == "New GmbH" &&
			in.Jurisdiction != nil && *in.Jurisdiction == domain.JurisdictionGermany &&
			in.DocumentDate != nil && in.DocumentDate.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) &&
			in.Receiver == nil
	}), mock.Anything).Return(&service.InvoiceResult{Invoice: &domain.Invoice{ID: id}}, nil)

	body := bytes.NewBufferString(`{"sender":"New GmbH","jurisdiction":"germany","doc_date":"2025-03-04"}`)
	c, w := newInvoiceContext(http.MethodPut, "/", body, "application/json")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Update_BadDate(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	id := uuid.New()

	body := bytes.NewBufferString(`{"pro_date":"2025-13-40"}`)
	c, w := newInvoiceContext(http.MethodPut, "/", body, "application/json")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Update_Deleted(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	id := uuid.New()
	svc.On("Update", mock.Anything, id, mock.Anything, mock.Anything).Return(nil, domain.ErrInvoiceDeleted)

	c, w := newInvoiceContext(http.MethodPut, "/", bytes.NewBufferString(`{}`), "application/json")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Update(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVOICE_DELETED", decodeResponse(t, w).Error.Code)
}

func TestInvoiceHandler_DeleteAndProcess(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	id := uuid.New()
	actor := mock.MatchedBy(func(a service.Actor) bool { return a.Username == "alice" })

	svc.On("Delete", mock.Anything, id, actor).Return(nil)
	svc.On("Process", mock.Anything, id, actor).Return(&domain.Invoice{ID: id, Status: domain.ProcessingComplete}, nil)

	c, w := newInvoiceContext(http.MethodDelete, "/", nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Delete(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newInvoiceContext(http.MethodPost, "/", nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Process(c)
	assert.Equal(t, http.StatusOK, w.Code)

	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Download_NoFile(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	id := uuid.New()
	svc.On("GetDownloadURL", mock.Anything, id).Return("", domain.ErrNoFileAttached)

	c, w := newInvoiceContext(http.MethodGet, "/", nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Download(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NO_FILE_ATTACHED", decodeResponse(t, w).Error.Code)
}

func TestInvoiceHandler_AuditTrail(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	id := uuid.New()
	svc.On("AuditTrail", mock.Anything, id, 0, 20).
		Return([]domain.AuditLog{{Action: domain.AuditInvoiceUpload, PerformedBy: "alice"}}, 1, nil)

	c, w := newInvoiceContext(http.MethodGet, "/", nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.AuditTrail(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeResponse(t, w).Meta.Total)
}

func exportInvoices(n int) []domain.Invoice {
	out := make([]domain.Invoice, n)
	for i := range out {
		out[i] = domain.Invoice{
			ID:            uuid.New(),
			InvoiceNumber: "INV-" + strings.Repeat("9", i+1),
			DocumentDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Sender:        "Seller",
			Receiver:      "Buyer",
			Status:        domain.ProcessingComplete,
		}
	}
	return out
}

func TestInvoiceHandler_Export_CSV(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	svc.On("List", mock.Anything, mock.Anything, 0, 200).Return(exportInvoices(2), 2, nil)

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices/export", nil, "")
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	raw := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(raw, export.BOM))
	records, err := csv.NewReader(bytes.NewReader(raw[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Invoice Number", records[0][0])
	assert.Equal(t, "INV-9", records[1][0])
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Export_PagesThroughResults(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	svc.On("List", mock.Anything, mock.Anything, 0, 200).Return(exportInvoices(200), 250, nil).Once()
	svc.On("List", mock.Anything, mock.Anything, 200, 200).Return(exportInvoices(50), 250, nil).Once()

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices/export?format=csv", nil, "")
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	records, err := csv.NewReader(bytes.NewReader(w.Body.Bytes()[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 251)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Export_XLSX(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	svc.On("List", mock.Anything, mock.Anything, 0, 200).Return(exportInvoices(3), 3, nil)

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices/export?format=xlsx", nil, "")
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	rows, err := export.ReadRows(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Invoice Number", rows[0][0])
}

func TestInvoiceHandler_Export_Errors(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	c, w := newInvoiceContext(http.MethodGet, "/api/v1/invoices/export?format=pdf", nil, "")
	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("List", mock.Anything, mock.Anything, 0, 200).Return(nil, 0, errors.New("db down"))
	c, w = newInvoiceContext(http.MethodGet, "/api/v1/invoices/export", nil, "")
	h.Export(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeResponse(t, w).Error.Code)
}

package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"regnify/internal/domain"
	"regnify/internal/export"
	"regnify/internal/service"
)

const (
	dateLayout      = "2006-01-02"
	exportBatchSize = 200
	maxSearchLimit  = 100
)

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	now            func() time.Time
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, now: time.Now}
}

// parseDate parses an optional YYYY-MM-DD value. Empty yields the zero time.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid '%s': must be YYYY-MM-DD", field)
	}
	return t, nil
}

// Upload handles POST /api/v1/invoices (multipart/form-data).
// @Summary Upload an invoice
// @Description Create an invoice and validate its number against the jurisdiction's format rules. The file is optional.
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param invoice_number formData string true "Invoice number"
// @Param doc_date formData string true "Document date (YYYY-MM-DD)"
// @Param pro_date formData string true "Processing date (YYYY-MM-DD)"
// @Param sender formData string false "Sender"
// @Param receiver formData string false "Receiver"
// @Param jurisdiction formData string false "Jurisdiction"
// @Param document_type formData string false "Document type"
// @Param file formData file false "Invoice document"
// @Success 201 {object} Response{data=service.InvoiceResult} "Invoice created"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 409 {object} ErrorResponseBody "Invoice number taken"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Upload(c *gin.Context) {
	docDate, err := parseDate("doc_date", c.PostForm("doc_date"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	proDate, err := parseDate("pro_date", c.PostForm("pro_date"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	// The number is validated exactly as supplied.
	number := c.PostForm("invoice_number")
	if strings.TrimSpace(number) == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invoice_number is required")
		return
	}

	input := &service.UploadInvoiceInput{
		InvoiceNumber:  number,
		DocumentDate:   docDate,
		ProcessingDate: proDate,
		Sender:         c.PostForm("sender"),
		Receiver:       c.PostForm("receiver"),
		Jurisdiction:   domain.Jurisdiction(strings.ToUpper(strings.TrimSpace(c.PostForm("jurisdiction")))),
		DocumentType:   domain.DocumentType(strings.ToUpper(strings.TrimSpace(c.PostForm("document_type")))),
	}

	file, header, err := c.Request.FormFile("file")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		input.File = &service.FileInput{Name: header.Filename, Size: header.Size, Body: file}
	case err == http.ErrMissingFile:
	default:
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	result, err := h.invoiceService.Upload(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, result)
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=domain.Invoice}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, inv)
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param invoice_number query string false "Invoice number"
// @Param status query string false "Processing status"
// @Param jurisdiction query string false "Jurisdiction"
// @Param document_type query string false "Document type"
// @Param sender query string false "Sender"
// @Param receiver query string false "Receiver"
// @Param uploaded_by query string false "Uploader username"
// @Param start_date query string false "Earliest document date (YYYY-MM-DD)"
// @Param end_date query string false "Latest document date (YYYY-MM-DD)"
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Invoice}
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	offset, limit := parsePagination(c)

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Search handles GET /api/v1/invoices/search?q=...
// @Summary Search invoices
// @Description Match invoice number, sender or receiver.
// @Tags invoices
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Limit (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Invoice}
// @Failure 400 {object} ErrorResponseBody "Missing query"
// @Security BearerAuth
// @Router /invoices/search [get]
func (h *InvoiceHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if strings.TrimSpace(q) == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "q query parameter is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > maxSearchLimit {
		limit = 20
	}

	invoices, err := h.invoiceService.Search(c.Request.Context(), q, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, invoices)
}

// updateInvoiceRequest is the JSON body of an update. Dates are YYYY-MM-DD.
type updateInvoiceRequest struct {
	DocumentDate   *string `json:"doc_date"`
	ProcessingDate *string `json:"pro_date"`
	Sender         *string `json:"sender"`
	Receiver       *string `json:"receiver"`
	Jurisdiction   *string `json:"jurisdiction"`
	DocumentType   *string `json:"document_type"`
}

func (r *updateInvoiceRequest) toInput() (*service.UpdateInvoiceInput, error) {
	input := &service.UpdateInvoiceInput{Sender: r.Sender, Receiver: r.Receiver}
	if r.DocumentDate != nil {
		t, err := time.Parse(dateLayout, *r.DocumentDate)
		if err != nil {
			return nil, fmt.Errorf("invalid 'doc_date': must be YYYY-MM-DD")
		}
		input.DocumentDate = &t
	}
	if r.ProcessingDate != nil {
		t, err := time.Parse(dateLayout, *r.ProcessingDate)
		if err != nil {
			return nil, fmt.Errorf("invalid 'pro_date': must be YYYY-MM-DD")
		}
		input.ProcessingDate = &t
	}
	if r.Jurisdiction != nil {
		j := domain.Jurisdiction(strings.ToUpper(strings.TrimSpace(*r.Jurisdiction)))
		input.Jurisdiction = &j
	}
	if r.DocumentType != nil {
		dt := domain.DocumentType(strings.ToUpper(strings.TrimSpace(*r.DocumentType)))
		input.DocumentType = &dt
	}
	return input, nil
}

// Update handles PUT /api/v1/invoices/:id
// @Summary Update an invoice
// @Description Change invoice fields and revalidate the number.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body UpdateInvoiceRequest true "Fields to change"
// @Success 200 {object} Response{data=service.InvoiceResult}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.invoiceService.Update(c.Request.Context(), id, input, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// Process handles POST /api/v1/invoices/:id/process
// @Summary Process an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=domain.Invoice}
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 409 {object} ErrorResponseBody "Invoice deleted"
// @Security BearerAuth
// @Router /invoices/{id}/process [post]
func (h *InvoiceHandler) Process(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.Process(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, inv)
}

// Download handles GET /api/v1/invoices/:id/download
// @Summary Get a download link
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=DownloadURLResponse}
// @Failure 404 {object} ErrorResponseBody "Invoice or file not found"
// @Security BearerAuth
// @Router /invoices/{id}/download [get]
func (h *InvoiceHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	url, err := h.invoiceService.GetDownloadURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"download_url": url})
}

// AuditTrail handles GET /api/v1/invoices/:id/audit
// @Summary Invoice audit trail
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.AuditLog}
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/audit [get]
func (h *InvoiceHandler) AuditTrail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)
	entries, total, err := h.invoiceService.AuditTrail(c.Request.Context(), id, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// invoiceBatchWriter is implemented by the CSV and XLSX export writers.
type invoiceBatchWriter interface {
	WriteHeader() error
	WriteInvoices([]domain.Invoice) error
}

// Export handles GET /api/v1/invoices/export?format=csv|xlsx plus the list filters.
// @Summary Export invoices
// @Description Stream the filtered invoices as CSV or XLSX.
// @Tags invoices
// @Produce octet-stream
// @Param format query string false "File format" Enums(csv, xlsx) default(csv)
// @Param status query string false "Processing status"
// @Param jurisdiction query string false "Jurisdiction"
// @Param start_date query string false "Earliest document date (YYYY-MM-DD)"
// @Param end_date query string false "Latest document date (YYYY-MM-DD)"
// @Success 200 {file} file "Export file"
// @Failure 400 {object} ErrorResponseBody "Invalid filter or format"
// @Security BearerAuth
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	// Fetch the first page before writing headers so errors still get a JSON response.
	ctx := c.Request.Context()
	first, total, err := h.invoiceService.List(ctx, filter, 0, exportBatchSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("invoices", format, h.now())
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	var (
		w     invoiceBatchWriter
		csvW  *export.CSVWriter
		xlsxW *export.XLSXWriter
	)
	if format == export.FormatXLSX {
		if xlsxW, err = export.NewXLSXWriter(); err != nil {
			HandleError(c, err)
			return
		}
		w = xlsxW
	} else {
		_, _ = c.Writer.Write(export.BOM)
		csvW = export.NewCSVWriter(c.Writer)
		w = csvW
	}

	if err := h.writeBatches(c, w, filter, first, total); err != nil {
		log.Printf("InvoiceHandler.Export: aborted after headers sent: %v", err)
		return
	}

	if xlsxW != nil {
		if _, err := xlsxW.WriteTo(c.Writer); err != nil {
			log.Printf("InvoiceHandler.Export: writing workbook: %v", err)
		}
		return
	}
	csvW.Flush()
}

func (h *InvoiceHandler) writeBatches(c *gin.Context, w invoiceBatchWriter, filter domain.InvoiceFilter, first []domain.Invoice, total int) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteInvoices(first); err != nil {
		return err
	}
	for offset := len(first); offset < total && len(first) > 0; offset += len(first) {
		var err error
		first, _, err = h.invoiceService.List(c.Request.Context(), filter, offset, exportBatchSize)
		if err != nil {
			return err
		}
		if err := w.WriteInvoices(first); err != nil {
			return err
		}
	}
	return nil
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseInvoiceFilter(c *gin.Context) (domain.InvoiceFilter, error) {
	filter := domain.InvoiceFilter{
		InvoiceNumber: c.Query("invoice_number"),
		Status:        domain.ProcessingStatus(strings.ToUpper(c.Query("status"))),
		Jurisdiction:  domain.Jurisdiction(strings.ToUpper(c.Query("jurisdiction"))),
		DocumentType:  domain.DocumentType(strings.ToUpper(c.Query("document_type"))),
		Sender:        c.Query("sender"),
		Receiver:      c.Query("receiver"),
		UploadedBy:    c.Query("uploaded_by"),
	}
	if filter.Status != "" && !domain.ValidProcessingStatuses[filter.Status] {
		return filter, fmt.Errorf("invalid 'status'")
	}
	if filter.Jurisdiction != "" && !filter.Jurisdiction.IsValid() {
		return filter, fmt.Errorf("invalid 'jurisdiction'")
	}
	if filter.DocumentType != "" && !domain.ValidDocumentTypes[filter.DocumentType] {
		return filter, fmt.Errorf("invalid 'document_type'")
	}
	if v := c.Query("start_date"); v != "" {
		t, err := parseDate("start_date", v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := parseDate("end_date", v)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}
	return filter, nil
}

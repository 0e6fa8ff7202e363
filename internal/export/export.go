package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"regnify/internal/domain"
)

// Format selects the export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return domain.AllowedExtensions["xlsx"]
	}
	return "text/csv; charset=utf-8"
}

// columns is the header row shared by all formats.
var columns = []string{
	"Invoice Number",
	"Document Date",
	"Processing Date",
	"Sender",
	"Receiver",
	"Jurisdiction",
	"Document Type",
	"Status",
	"Business Status",
	"Provider Response",
	"Validation Score",
	"Validation Errors",
	"File Name",
	"Uploaded By",
	"Processed By",
	"Processed At",
	"Created At",
}

const dateLayout = "2006-01-02"

func invoiceToRow(inv *domain.Invoice) []string {
	row := make([]string, len(columns))
	row[0] = inv.InvoiceNumber
	row[1] = formatDate(inv.DocumentDate)
	row[2] = formatDate(inv.ProcessingDate)
	row[3] = inv.Sender
	row[4] = inv.Receiver
	if inv.Jurisdiction != nil {
		row[5] = string(*inv.Jurisdiction)
	}
	row[6] = string(inv.DocumentType)
	row[7] = string(inv.Status)
	row[8] = string(inv.BusinessStatus)
	row[9] = string(inv.ProviderResponse)
	row[10] = strconv.Itoa(inv.ValidationScore)
	row[11] = inv.ValidationErrors
	row[12] = deref(inv.FileName)
	row[13] = inv.UploadedBy
	row[14] = deref(inv.ProcessedBy)
	row[15] = formatTime(inv.ProcessedAt)
	row[16] = inv.CreatedAt.UTC().Format(time.RFC3339)
	return row
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces everything except letters, digits, hyphen and
// underscore with _, collapses runs of _ and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {prefix}_{YYYY-MM-DD}.{ext} for Content-Disposition.
func BuildFilename(prefix string, f Format, now time.Time) string {
	sanitized := SanitizeFilename(prefix)
	if sanitized == "" {
		sanitized = "invoices"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format(dateLayout), f)
}

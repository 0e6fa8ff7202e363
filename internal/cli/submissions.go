package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"regnify/internal/domain"
	"regnify/internal/export"
	"regnify/internal/validator/invoice"
)

const dateLayout = "2006-01-02"

// submissionRecord is the on-disk form of a submission. Dates are YYYY-MM-DD.
type submissionRecord struct {
	InvoiceNumber string `json:"invoice_number"`
	DocDate       string `json:"doc_date"`
	ProDate       string `json:"pro_date"`
	Sender        string `json:"sender"`
	Receiver      string `json:"receiver"`
	Jurisdiction  string `json:"jurisdiction"`
	DocumentType  string `json:"document_type"`
	FileName      string `json:"file_name"`
}

func (r submissionRecord) toSubmission() (*invoice.Submission, error) {
	sub := &invoice.Submission{
		InvoiceNumber: r.InvoiceNumber,
		Sender:        r.Sender,
		Receiver:      r.Receiver,
		Jurisdiction:  domain.Jurisdiction(strings.ToUpper(strings.TrimSpace(r.Jurisdiction))),
		DocumentType:  domain.DocumentType(strings.ToUpper(strings.TrimSpace(r.DocumentType))),
	}
	var err error
	if sub.DocumentDate, err = parseOptionalDate(r.DocDate); err != nil {
		return nil, fmt.Errorf("%s: doc_date: %w", sub.InvoiceNumber, err)
	}
	if sub.ProcessingDate, err = parseOptionalDate(r.ProDate); err != nil {
		return nil, fmt.Errorf("%s: pro_date: %w", sub.InvoiceNumber, err)
	}
	if sub.Jurisdiction != "" && !sub.Jurisdiction.IsValid() {
		return nil, fmt.Errorf("%s: %w", sub.InvoiceNumber, domain.ErrInvalidJurisdiction)
	}
	if r.FileName != "" {
		sub.File = &invoice.FileDescriptor{Name: r.FileName}
	}
	return sub, nil
}

func parseOptionalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	// Exported workbooks may carry a full timestamp.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	return time.Parse(dateLayout, s)
}

// LoadSubmissions reads submissions from a .json file (object or array) or
// an .xlsx workbook laid out like the invoice export.
func LoadSubmissions(path string) ([]*invoice.Submission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSXSubmissions(f)
	case ".json":
		return readJSONSubmissions(f)
	}
	return nil, fmt.Errorf("unsupported input %s: expected .json or .xlsx", path)
}

func readJSONSubmissions(r io.Reader) ([]*invoice.Submission, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var records []submissionRecord
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &records)
	} else {
		var one submissionRecord
		err = json.Unmarshal(data, &one)
		records = []submissionRecord{one}
	}
	if err != nil {
		return nil, fmt.Errorf("decoding submissions: %w", err)
	}
	return toSubmissions(records)
}

// xlsxColumns maps export header names to record fields.
var xlsxColumns = map[string]func(*submissionRecord, string){
	"Invoice Number":  func(r *submissionRecord, v string) { r.InvoiceNumber = v },
	"Document Date":   func(r *submissionRecord, v string) { r.DocDate = v },
	"Processing Date": func(r *submissionRecord, v string) { r.ProDate = v },
	"Sender":          func(r *submissionRecord, v string) { r.Sender = v },
	"Receiver":        func(r *submissionRecord, v string) { r.Receiver = v },
	"Jurisdiction":    func(r *submissionRecord, v string) { r.Jurisdiction = v },
	"Document Type":   func(r *submissionRecord, v string) { r.DocumentType = v },
	"File Name":       func(r *submissionRecord, v string) { r.FileName = v },
}

func readXLSXSubmissions(r io.Reader) ([]*invoice.Submission, error) {
	rows, err := export.ReadRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]submissionRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var rec submissionRecord
		for i, name := range header {
			set, ok := xlsxColumns[strings.TrimSpace(name)]
			if !ok || i >= len(row) {
				continue
			}
			set(&rec, row[i])
		}
		if rec == (submissionRecord{}) {
			continue
		}
		records = append(records, rec)
	}
	return toSubmissions(records)
}

func toSubmissions(records []submissionRecord) ([]*invoice.Submission, error) {
	subs := make([]*invoice.Submission, 0, len(records))
	for i, rec := range records {
		sub, err := rec.toSubmission()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// LoadRuleSpecs reads additional format rules from a JSON array.
func LoadRuleSpecs(path string) ([]invoice.RuleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var specs []invoice.RuleSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("decoding rules %s: %w", path, err)
	}
	return specs, nil
}

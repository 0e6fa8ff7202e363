package export

import (
	"encoding/csv"
	"io"

	"regnify/internal/domain"
)

// BOM is written first so Excel on Windows detects UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter streams invoices as CSV.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices converts a batch of invoices to rows and writes them.
func (w *CSVWriter) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.csv.Write(invoiceToRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

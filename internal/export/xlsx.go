package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"regnify/internal/domain"
)

const sheetName = "Invoices"

// XLSXWriter buffers invoices into a single-sheet workbook.
type XLSXWriter struct {
	f       *excelize.File
	sw      *excelize.StreamWriter
	nextRow int
}

// NewXLSXWriter creates an empty workbook with the Invoices sheet.
func NewXLSXWriter() (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating stream writer: %w", err)
	}
	return &XLSXWriter{f: f, sw: sw, nextRow: 1}, nil
}

func (w *XLSXWriter) WriteHeader() error {
	return w.writeRow(columns)
}

// WriteInvoices appends a batch of invoices to the sheet.
func (w *XLSXWriter) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.writeRow(invoiceToRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) writeRow(values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, w.nextRow)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := w.sw.SetRow(cell, row); err != nil {
		return fmt.Errorf("writing row %d: %w", w.nextRow, err)
	}
	w.nextRow++
	return nil
}

// WriteTo flushes the workbook to out and releases it.
func (w *XLSXWriter) WriteTo(out io.Writer) (int64, error) {
	defer func() { _ = w.f.Close() }()
	if err := w.sw.Flush(); err != nil {
		return 0, fmt.Errorf("flushing sheet: %w", err)
	}
	return w.f.WriteTo(out)
}

// ReadRows returns the rows of the first sheet of an XLSX workbook.
func ReadRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return rows, nil
}

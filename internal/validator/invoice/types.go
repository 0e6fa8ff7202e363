package invoice

import (
	"time"

	"regnify/internal/domain"
)

// Submission is the set of invoice fields a validation run operates on.
// It is built by the caller from an upload or update request and never persisted.
type Submission struct {
	InvoiceNumber  string              `json:"invoice_number"`
	DocumentDate   time.Time           `json:"doc_date"`
	ProcessingDate time.Time           `json:"pro_date"`
	Sender         string              `json:"sender"`
	Receiver       string              `json:"receiver"`
	Jurisdiction   domain.Jurisdiction `json:"jurisdiction,omitempty"`
	DocumentType   domain.DocumentType `json:"document_type,omitempty"`
	File           *FileDescriptor     `json:"file,omitempty"`
}

// FileDescriptor describes an attachment. Validators never inspect it.
type FileDescriptor struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Location    string `json:"location"`
}

// FromInvoice builds a Submission from a stored invoice, used when re-validating.
func FromInvoice(inv *domain.Invoice) *Submission {
	sub := &Submission{
		InvoiceNumber:  inv.InvoiceNumber,
		DocumentDate:   inv.DocumentDate,
		ProcessingDate: inv.ProcessingDate,
		Sender:         inv.Sender,
		Receiver:       inv.Receiver,
		DocumentType:   inv.DocumentType,
	}
	if inv.Jurisdiction != nil {
		sub.Jurisdiction = *inv.Jurisdiction
	}
	if inv.FileName != nil {
		fd := &FileDescriptor{Name: *inv.FileName}
		if inv.FileSize != nil {
			fd.Size = *inv.FileSize
		}
		if inv.FileContentType != nil {
			fd.ContentType = *inv.FileContentType
		}
		if inv.FileKey != nil {
			fd.Location = *inv.FileKey
		}
		sub.File = fd
	}
	return sub
}

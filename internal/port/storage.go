package port

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// UploadInput describes an invoice attachment to store.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	// Metadata is stored alongside the object, e.g. the invoice number.
	Metadata map[string]string
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts invoice attachment storage.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, bucket, key string) error
	// GetDownloadURL returns a time-limited URL that serves the object as an
	// attachment named fileName.
	GetDownloadURL(ctx context.Context, bucket, key, fileName string, expiry time.Duration) (string, error)
	// Ping checks that bucket exists and is reachable.
	Ping(ctx context.Context, bucket string) error
}

// InvoiceObjectKey is the storage key of an invoice attachment.
func InvoiceObjectKey(invoiceID uuid.UUID, fileName string) string {
	return fmt.Sprintf("invoices/%s/%s", invoiceID, fileName)
}

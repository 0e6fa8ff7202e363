package s3

import (
	"context"
	"fmt"
	"mime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"regnify/internal/config"
	"regnify/internal/port"
)

const (
	// Invoice attachments are capped well below this, so most uploads are a single part.
	partSize          = 16 * 1024 * 1024
	uploadConcurrency = 3
)

type attachmentStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader

	// encrypt requests SSE-S3; S3-compatible endpoints often lack a KMS.
	encrypt bool
}

// NewS3Client creates the S3-backed store for invoice attachments.
// A non-empty endpoint switches to path-style addressing for MinIO and LocalStack.
func NewS3Client(cfg *config.S3Config) (port.ObjectStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("s3.NewS3Client: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &attachmentStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = partSize
			u.Concurrency = uploadConcurrency
		}),
		encrypt: cfg.Endpoint == "",
	}, nil
}

func (s *attachmentStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	put := &s3.PutObjectInput{
		Bucket:      aws.String(input.Bucket),
		Key:         aws.String(input.Key),
		Body:        input.Body,
		ContentType: aws.String(input.ContentType),
		Metadata:    input.Metadata,
	}
	if s.encrypt {
		put.ServerSideEncryption = types.ServerSideEncryptionAes256
	}
	if input.Size > 0 && input.Size <= partSize {
		put.ContentLength = aws.Int64(input.Size)
	}

	result, err := s.uploader.Upload(ctx, put)
	if err != nil {
		return nil, fmt.Errorf("s3.Upload %s: %w", input.Key, err)
	}

	out := &port.UploadOutput{Location: result.Location}
	if result.ETag != nil {
		out.ETag = *result.ETag
	}
	return out, nil
}

func (s *attachmentStore) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3.Delete %s: %w", key, err)
	}
	return nil
}

// GetDownloadURL presigns a GET that downloads the attachment under its original name.
func (s *attachmentStore) GetDownloadURL(ctx context.Context, bucket, key, fileName string, expiry time.Duration) (string, error) {
	get := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if fileName != "" {
		get.ResponseContentDisposition = aws.String(
			mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	}
	req, err := s.presigner.PresignGetObject(ctx, get, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("s3.GetDownloadURL %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *attachmentStore) Ping(ctx context.Context, bucket string) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("s3.Ping %s: %w", bucket, err)
	}
	return nil
}

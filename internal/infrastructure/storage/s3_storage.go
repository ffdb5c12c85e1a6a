// Package storage provides object storage implementations for file operations.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appcrm "github.com/fieldline/crm-backend/internal/application/crm"
	infraconfig "github.com/fieldline/crm-backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ensure S3BlobStorage implements BlobStorage
var _ appcrm.BlobStorage = (*S3BlobStorage)(nil)

// S3BlobStorage implements BlobStorage using AWS S3 SDK v2.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, etc.)
type S3BlobStorage struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// S3BlobStorageOption is a functional option for configuring S3BlobStorage
type S3BlobStorageOption func(*S3BlobStorage)

// WithLogger sets a custom logger for S3BlobStorage
func WithLogger(logger *zap.Logger) S3BlobStorageOption {
	return func(s *S3BlobStorage) {
		s.logger = logger
	}
}

// NewS3BlobStorage creates a new S3BlobStorage from configuration.
// It supports any S3-compatible storage backend.
func NewS3BlobStorage(cfg *infraconfig.StorageConfig, opts ...S3BlobStorageOption) (*S3BlobStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	storage := &S3BlobStorage{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

// Store writes the content under a unique key and returns the storage path
func (s *S3BlobStorage) Store(ctx context.Context, namespace, fileName string, content io.Reader, contentType string) (string, error) {
	if namespace == "" || fileName == "" {
		return "", errors.New("namespace and file name are required")
	}

	key := buildObjectKey(namespace, fileName)

	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	s.logger.Debug("object stored",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)
	return key, nil
}

// Download returns the stored content
func (s *S3BlobStorage) Download(ctx context.Context, storagePath string) ([]byte, error) {
	if storagePath == "" {
		return nil, errors.New("storage path is required")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storagePath),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Delete removes the stored object
func (s *S3BlobStorage) Delete(ctx context.Context, storagePath string) error {
	if storagePath == "" {
		return errors.New("storage path is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storagePath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// buildObjectKey prefixes the file name with the namespace, a date bucket
// and a random component so repeated uploads never collide.
func buildObjectKey(namespace, fileName string) string {
	return path.Join(
		namespace,
		time.Now().Format("2006/01"),
		uuid.New().String()+"-"+path.Base(fileName),
	)
}

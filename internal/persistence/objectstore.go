package persistence

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/campus-kit/complaint-service/internal/config"
)

// ObjectStore wraps a MinIO client holding complaint and resolution images.
// A nil-client store is valid and reports itself as disabled.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// NewObjectStore builds the store. A missing endpoint yields a disabled store
// so the service can run without image support.
func NewObjectStore(cfg config.ObjectStoreConfig, logger *zap.Logger) (*ObjectStore, error) {
	if !cfg.Enabled() {
		logger.Warn("OBJECT_STORE_ENDPOINT not provided; image storage disabled")
		return &ObjectStore{}, nil
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("object store access_key and secret_key are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	logger.Info("connected to object store", zap.String("bucket", cfg.Bucket))
	return &ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

// Enabled reports whether uploads can be accepted.
func (s *ObjectStore) Enabled() bool {
	return s != nil && s.client != nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Put stores one object.
func (s *ObjectStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if !s.Enabled() {
		return fmt.Errorf("object store not configured")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get retrieves one object; the caller closes the returned reader.
func (s *ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("object store not configured")
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return obj, nil
}

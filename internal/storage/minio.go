package storage

import (
	"context"
	"fmt"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the configuration for a MinIO server.
type MinioConfig struct {
	Endpoint  string // host:port, no scheme
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string // Optional: skips the bucket location lookup when set
}

// MinioStore implements ObjectStore on a MinIO server.
type MinioStore struct {
	client *miniogo.Client
}

// NewMinioStore creates a new MinioStore.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{client: client}, nil
}

// EnsureBucket creates bucket if it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// Put implements ObjectStore.
func (s *MinioStore) Put(ctx context.Context, localPath, bucket, key, contentType string) error {
	_, err := s.client.FPutObject(ctx, bucket, key, localPath, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload to minio: %w", err)
	}
	return nil
}

// Delete implements ObjectStore.
func (s *MinioStore) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete from minio: %w", err)
	}
	return nil
}

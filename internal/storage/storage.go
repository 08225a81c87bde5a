// Package storage publishes local artifacts to durable object storage.
// It defines the ObjectStore interface (port) for hexagonal architecture,
// implementations for S3, MinIO and local disk, and the Uploader that
// namespaces keys and derives public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Static errors for storage operations.
var (
	// ErrEmptyKey is returned when an upload is attempted without a destination key.
	ErrEmptyKey = errors.New("object key must not be empty")
	// ErrInvalidKey is returned when a key would escape its bucket.
	ErrInvalidKey = errors.New("object key must be a relative path inside the bucket")
	// ErrForeignURL is returned when a URL does not point into the uploader's bucket.
	ErrForeignURL = errors.New("url does not belong to this bucket")
)

// ObjectStore writes files to a bucket-addressed object store.
// Implementations must not retry internally.
type ObjectStore interface {
	// Put uploads the file at localPath to bucket under key.
	Put(ctx context.Context, localPath, bucket, key, contentType string) error
	// Delete removes bucket/key. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, key string) error
}

// Uploader pushes staged artifacts to an ObjectStore and returns the
// public URL each one is reachable at.
type Uploader struct {
	store   ObjectStore
	bucket  string
	baseURL string
}

// NewUploader creates an Uploader writing into bucket. baseURL is the
// storage host part of every returned URL.
func NewUploader(store ObjectStore, bucket, baseURL string) *Uploader {
	return &Uploader{
		store:   store,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Upload stores the file at localPath under key and returns its public URL.
// The content type is sniffed from the file contents.
func (u *Uploader) Upload(ctx context.Context, localPath, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	mtype, err := mimetype.DetectFile(localPath)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}

	if err := u.store.Put(ctx, localPath, u.bucket, key, mtype.String()); err != nil {
		return "", fmt.Errorf("put %s/%s: %w", u.bucket, key, err)
	}

	return PublicURL(u.baseURL, u.bucket, key), nil
}

// PublicURL returns {baseURL}/{bucket}/{key}.
func PublicURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + key
}

// Delete removes the object a public URL returned by Upload points at.
func (u *Uploader) Delete(ctx context.Context, publicURL string) error {
	key, err := u.KeyFromURL(publicURL)
	if err != nil {
		return err
	}
	if err := u.store.Delete(ctx, u.bucket, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", u.bucket, key, err)
	}
	return nil
}

// KeyFromURL is the inverse of PublicURL for this uploader's base and bucket.
func (u *Uploader) KeyFromURL(publicURL string) (string, error) {
	prefix := PublicURL(u.baseURL, u.bucket, "")
	key, ok := strings.CutPrefix(publicURL, prefix)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, publicURL)
	}
	if key == "" || strings.ContainsAny(key, "?#") || !fs.ValidPath(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore implements ObjectStore on local disk. Objects are written to
// {root}/{bucket}/{key}, which lets the HTTP server expose them directly
// during development.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore.
// The root directory is created if it doesn't exist.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create object root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Root returns the directory objects are written under.
func (s *LocalStore) Root() string {
	return s.root
}

// Put implements ObjectStore. The content type is implied by the file and not stored.
func (s *LocalStore) Put(ctx context.Context, localPath, bucket, key, _ string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	if !filepath.IsLocal(bucket) || !filepath.IsLocal(key) {
		return fmt.Errorf("%w: %s/%s", ErrInvalidKey, bucket, key)
	}

	dst := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	src, err := os.Open(localPath) // #nosec G304 - path is inside a staging area owned by the caller
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = src.Close() }()

	f, err := os.CreateTemp(filepath.Dir(dst), ".put_*")
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	tmp := f.Name()

	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close object: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish object: %w", err)
	}

	return nil
}

// Delete implements ObjectStore.
func (s *LocalStore) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	if !filepath.IsLocal(bucket) || !filepath.IsLocal(key) {
		return fmt.Errorf("%w: %s/%s", ErrInvalidKey, bucket, key)
	}

	err := os.Remove(filepath.Join(s.root, bucket, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

package staging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Spool stores uploaded source videos on local disk until the run that
// consumes them finishes.
type Spool struct {
	dir string
}

// NewSpool creates a Spool writing into dir.
// If dir is empty, a directory under os.TempDir() is used.
// The directory is created if it doesn't exist.
func NewSpool(dir string) (*Spool, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "framestrip", "uploads")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create spool directory: %w", err)
	}

	return &Spool{dir: dir}, nil
}

// Dir returns the spool directory path.
func (s *Spool) Dir() string {
	return s.dir
}

// Save writes data to a new file in the spool and returns its path.
// The extension of name is kept so decoders can use it as a container hint.
func (s *Spool) Save(ctx context.Context, name string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	f, err := os.CreateTemp(s.dir, "source_*"+filepath.Ext(filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}

	fileName := f.Name()
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(fileName)
		return "", fmt.Errorf("write spool file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(fileName)
		return "", fmt.Errorf("close spool file: %w", err)
	}

	return fileName, nil
}

// Remove deletes the given spool files.
// It continues even if some files fail to delete, returning the first error encountered.
func (s *Spool) Remove(paths ...string) error {
	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove spool file %s: %w", p, err)
			}
		}
	}
	return firstErr
}

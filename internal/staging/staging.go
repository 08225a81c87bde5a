// Package staging manages per-request scratch directories and the spool
// that incoming source uploads are written to.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// dirPrefix is prepended to every staging directory name.
const dirPrefix = "thumbnails_"

// ErrInvalidToken is returned when a staging token is empty or contains a path separator.
var ErrInvalidToken = errors.New("staging: token must be a non-empty single path element")

// Manager creates staging areas under a root directory.
type Manager struct {
	root string
}

// NewManager creates a Manager rooted at root. The root is created lazily by Acquire.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the directory staging areas are created in.
func (m *Manager) Root() string {
	return m.root
}

// Acquire creates the staging directory for token, creating the root as
// needed. It fails if the directory already exists, so two requests can
// never share an area.
func (m *Manager) Acquire(token string) (*Area, error) {
	if token == "" || token == "." || token == ".." || strings.ContainsAny(token, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	if err := os.MkdirAll(m.root, 0o750); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}

	dir := filepath.Join(m.root, dirPrefix+token)
	if err := os.Mkdir(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create staging area: %w", err)
	}

	return &Area{Token: token, Dir: dir}, nil
}

// Area is a directory owned by a single request.
type Area struct {
	Token string
	Dir   string
}

// Path returns the location of name inside the area.
func (a *Area) Path(name string) string {
	return filepath.Join(a.Dir, filepath.Base(name))
}

// Release removes the area and everything in it. Releasing an area that
// is already gone is not an error.
func (a *Area) Release() error {
	if err := os.RemoveAll(a.Dir); err != nil {
		return fmt.Errorf("remove staging area %s: %w", a.Dir, err)
	}
	return nil
}

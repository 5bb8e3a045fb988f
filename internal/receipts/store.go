// Package receipts stores receipt attachments on disk under random names,
// so uploaded filenames never collide or leak into paths.
package receipts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes receipt files into a single directory. The ledger keeps the
// returned relative path on the expense row.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save persists the receipt content under a fresh uuid name, keeping the
// original extension, and returns the stored filename.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close receipt file: %w", err)
	}

	return name, nil
}

// Open returns the stored receipt for reading.
func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes a stored receipt. Removing an absent file is not an error.
func (s *Store) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove receipt file: %w", err)
	}
	return nil
}

// resolve rejects names that would escape the receipt directory.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid receipt name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Package filestore persists uploaded audio bytes on local disk under a
// single uploads directory. Stored names are randomized so concurrent uploads
// never collide.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes the reader's bytes to a new randomized filename, keeping the
// original name's extension. It returns the stored filename, the full path,
// and the byte count.
func (s *Store) Save(r io.Reader, originalName string) (string, string, int64, error) {
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".bin"
	}
	filename := uuid.New().String() + ext
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("create file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", "", 0, fmt.Errorf("write file: %w", err)
	}
	return filename, path, size, nil
}

func (s *Store) Open(path string) (*os.File, error) {
	return os.Open(path)
}

func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

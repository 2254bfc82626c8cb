// Package files stores and serves profile pictures through a narrow storage
// interface.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidName  = errors.New("invalid file name")
)

// Storage abstracts where profile pictures live
type Storage interface {
	Save(name string, r io.Reader) error
	Open(name string) (io.ReadCloser, error)
}

// LocalStorage keeps files on the local disk under one directory
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the storage directory if needed
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// safePath rejects names that would escape the storage directory
func (s *LocalStorage) safePath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	return path, nil
}

func (s *LocalStorage) Save(name string, r io.Reader) error {
	path, err := s.safePath(name)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Open(name string) (io.ReadCloser, error) {
	path, err := s.safePath(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

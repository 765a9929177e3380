package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps robot images in a directory on disk. It is the
// default backend for CLI use and local development.
type LocalStorage struct {
	root string
}

// Ensure LocalStorage implements Interface
var _ Interface = (*LocalStorage)(nil)

// NewLocalStorage creates a local storage backend rooted at dir,
// creating the directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("image directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	return &LocalStorage{root: dir}, nil
}

// resolve maps a storage name onto a path under the root, rejecting
// names that would escape it.
func (s *LocalStorage) resolve(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage name %q", name)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Store writes an image file, creating parent directories as needed
func (s *LocalStorage) Store(_ context.Context, name string, data []byte) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

// Retrieve reads an image file
func (s *LocalStorage) Retrieve(_ context.Context, name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return data, nil
}

// List returns the names of stored files matching the prefix, using
// forward slashes regardless of platform.
func (s *LocalStorage) List(_ context.Context, prefix string) ([]string, error) {
	var names []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	return names, nil
}

// Delete removes an image file
func (s *LocalStorage) Delete(_ context.Context, name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}

	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
)

// LocalStore writes objects below a directory on the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if necessary.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to make path %q absolute: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create %q: %w", abs, err)
	}
	return &LocalStore{root: abs}, nil
}

var _ providers.MapStore = (*LocalStore)(nil)

// Root returns the absolute directory objects are stored in.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) pathForKey(key string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return full, nil
}

// Put writes content under key. The file is replaced atomically.
func (s *LocalStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: failed to create directory for %q: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: failed to write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: failed to close %q: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("storage: failed to chmod %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("storage: failed to move %q into place: %w", key, err)
	}
	return nil
}

// Get reads the object stored under key.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.pathForKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, providers.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read %q: %w", key, err)
	}
	return data, nil
}

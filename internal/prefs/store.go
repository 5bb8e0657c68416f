// Package prefs keeps small serialized values as files in the user config directory.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appDir = "catswitch"

// Dir returns the per-user directory for catswitch files, creating it if needed.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, appDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// FileStore holds one value under one key as <dir>/<key>.json.
type FileStore struct {
	path string
}

// NewFileStore returns a store for key inside dir. An empty dir means Dir().
func NewFileStore(dir, key string) (*FileStore, error) {
	if key == "" {
		return nil, fmt.Errorf("prefs: key required")
	}
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return nil, err
		}
		dir = d
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: filepath.Join(dir, key+".json")}, nil
}

// Path is the backing file.
func (s *FileStore) Path() string { return s.path }

// Load returns nil when the file does not exist.
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Save replaces the file atomically.
func (s *FileStore) Save(_ context.Context, data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

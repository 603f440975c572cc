package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the credentials file kept in the config directory.
const FileName = "credentials.json"

// FileSource stores credentials as JSON readable only by the owner.
type FileSource struct {
	Path string
}

// NewFileSource returns a FileSource for dir/credentials.json.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Path: filepath.Join(dir, FileName)}
}

// Credentials returns the stored credentials, or ErrNoCredentials when the
// file does not exist.
func (f *FileSource) Credentials(context.Context) (Credentials, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return c, nil
}

// Save writes c atomically with 0600 permissions.
func (f *FileSource) Save(c Credentials) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Clear removes the stored credentials. Idempotent.
func (f *FileSource) Clear() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

package filestore

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes evidence photos to local disk under a base directory and
// serves them back by relative URL. Deletion is best-effort: a verification
// must never fail because an old photo could not be removed.
type Store struct {
	BaseDir string
	BaseURL string
}

func New(baseDir string) *Store {
	return &Store{BaseDir: baseDir, BaseURL: "/uploads/payment-verifications"}
}

// Save persists the bytes under a fresh uuid name, keeping the original
// extension, and returns the URL to store alongside the verification.
func (s *Store) Save(data []byte, originalName string) (string, error) {
	if err := os.MkdirAll(s.BaseDir, 0755); err != nil {
		return "", fmt.Errorf("filestore: creating uploads dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.BaseDir, name), data, 0644); err != nil {
		return "", fmt.Errorf("filestore: writing %s: %w", name, err)
	}
	return path.Join(s.BaseURL, name), nil
}

// Delete removes a previously stored file by its URL. Returns the error for
// logging; callers treat it as non-fatal.
func (s *Store) Delete(fileURL string) error {
	if fileURL == "" {
		return nil
	}
	name := path.Base(fileURL)
	if name == "." || name == "/" {
		return nil
	}
	return os.Remove(filepath.Join(s.BaseDir, name))
}

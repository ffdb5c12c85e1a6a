package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	appcrm "github.com/fieldline/crm-backend/internal/application/crm"
)

// Ensure LocalBlobStorage implements BlobStorage
var _ appcrm.BlobStorage = (*LocalBlobStorage)(nil)

// LocalBlobStorage implements BlobStorage on the local filesystem.
// Use this for development until a real S3-compatible backend is configured.
type LocalBlobStorage struct {
	root string
}

// NewLocalBlobStorage creates a LocalBlobStorage rooted at the given directory
func NewLocalBlobStorage(root string) (*LocalBlobStorage, error) {
	if root == "" {
		root = "./data/blobs"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalBlobStorage{root: root}, nil
}

// Store writes the content under a unique key and returns the storage path
func (s *LocalBlobStorage) Store(ctx context.Context, namespace, fileName string, content io.Reader, contentType string) (string, error) {
	if namespace == "" || fileName == "" {
		return "", errors.New("namespace and file name are required")
	}

	key := buildObjectKey(namespace, fileName)
	fullPath := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return "", err
	}
	return key, nil
}

// Download returns the stored content
func (s *LocalBlobStorage) Download(ctx context.Context, storagePath string) ([]byte, error) {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// Delete removes the stored object
func (s *LocalBlobStorage) Delete(ctx context.Context, storagePath string) error {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	return os.Remove(fullPath)
}

// resolve maps a storage path to a filesystem path, rejecting traversal
func (s *LocalBlobStorage) resolve(storagePath string) (string, error) {
	if storagePath == "" {
		return "", errors.New("storage path is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(storagePath))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", errors.New("invalid storage path")
	}
	return filepath.Join(s.root, cleaned), nil
}

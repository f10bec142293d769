package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoCachedCredential is returned by a CredentialStore that holds nothing.
var ErrNoCachedCredential = errors.New("no cached credential")

// CredentialStore persists the encoded credential blob.
type CredentialStore interface {
	// Get returns the stored blob, or an error wrapping ErrNoCachedCredential
	// when nothing has been stored yet.
	Get(ctx context.Context) ([]byte, error)

	// Put replaces the stored blob.
	Put(ctx context.Context, data []byte) error
}

// FileStore keeps the credential in a single file with owner-only permissions.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads the cache file.
func (s *FileStore) Get(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNoCachedCredential, s.path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	return data, nil
}

// Put overwrites the cache file. The data is written to a temporary file in
// the same directory and renamed into place so a crash never leaves a
// truncated cache behind.
func (s *FileStore) Put(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to restrict token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}

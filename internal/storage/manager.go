package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Polyte/OMS-OCR/internal/models"
	"github.com/google/uuid"
)

// FilePrefix marks files owned by the store inside the uploads directory.
const FilePrefix = "file-"

// ErrNotFound is returned for unknown file IDs.
var ErrNotFound = errors.New("file not found")

// Store defines the interface for temporary document storage.
type Store interface {
	Save(name, mimeType string, r io.Reader) (*models.StoredFile, error)
	Get(id string) (*models.StoredFile, error)
	Delete(id string) error
	GetFilePath(id string) (string, error)
	SweepOlderThan(maxAge time.Duration) (int, error)
}

// LocalStore implements Store using the local filesystem.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	files     map[string]*models.StoredFile
	now       func() time.Time
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStore{
		uploadDir: uploadDir,
		files:     make(map[string]*models.StoredFile),
		now:       time.Now,
	}, nil
}

// Dir returns the uploads directory.
func (s *LocalStore) Dir() string {
	return s.uploadDir
}

// Save writes r to <uploads>/file-<uuid><ext>. The extension is taken from
// the original name.
func (s *LocalStore) Save(name, mimeType string, r io.Reader) (*models.StoredFile, error) {
	id := FilePrefix + uuid.New().String() + strings.ToLower(filepath.Ext(name))
	path := filepath.Join(s.uploadDir, id)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.StoredFile{
		ID:           id,
		Path:         path,
		OriginalName: name,
		MimeType:     mimeType,
		Size:         size,
		StoredAt:     s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	return info, nil
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.StoredFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return info, nil
}

// Delete removes a file from storage. A file already gone from disk is not
// an error.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	path := filepath.Join(s.uploadDir, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	return nil
}

// GetFilePath returns the path to a file.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[id]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return filepath.Join(s.uploadDir, id), nil
}

// Count returns the number of files currently tracked.
func (s *LocalStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// SweepOlderThan removes store-owned files whose modification time is older
// than maxAge, including files left behind by a previous process. It returns
// the number of files removed.
func (s *LocalStore) SweepOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return 0, fmt.Errorf("reading upload directory: %w", err)
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	var errs []error

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), FilePrefix) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if !fi.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.uploadDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		delete(s.files, entry.Name())
		removed++
	}

	return removed, errors.Join(errs...)
}

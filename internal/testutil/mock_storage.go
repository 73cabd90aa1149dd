// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Polyte/OMS-OCR/internal/models"
	"github.com/Polyte/OMS-OCR/internal/storage"
)

// MockStorage implements storage.Store in memory and counts calls.
type MockStorage struct {
	mu          sync.RWMutex
	files       map[string]*models.StoredFile
	fileData    map[string][]byte
	saves       int
	deleteCalls map[string]int

	// DeleteErr, when set, is returned by Delete after the call is counted.
	DeleteErr error
	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewMockStorage creates a new empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:       make(map[string]*models.StoredFile),
		fileData:    make(map[string][]byte),
		deleteCalls: make(map[string]int),
	}
}

func (m *MockStorage) Save(name, mimeType string, r io.Reader) (*models.StoredFile, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	return m.addLocked(generateTestID()+strings.ToLower(filepath.Ext(name)), name, mimeType, data), nil
}

func (m *MockStorage) Get(id string) (*models.StoredFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return file, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCalls[id]++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, exists := m.files[id]; !exists {
		return storage.ErrNotFound
	}

	delete(m.files, id)
	delete(m.fileData, id)
	return nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return "", storage.ErrNotFound
	}
	return file.Path, nil
}

func (m *MockStorage) SweepOlderThan(maxAge time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, f := range m.files {
		if f.StoredAt.Before(cutoff) {
			delete(m.files, id)
			delete(m.fileData, id)
			removed++
		}
	}
	return removed, nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddFile adds a file directly to the mock without counting a save.
func (m *MockStorage) AddFile(id, name, mimeType string, data []byte) *models.StoredFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(id, name, mimeType, data)
}

func (m *MockStorage) addLocked(id, name, mimeType string, data []byte) *models.StoredFile {
	file := &models.StoredFile{
		ID:           id,
		Path:         "/mock/path/" + id,
		OriginalName: name,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		StoredAt:     time.Now(),
	}
	m.files[id] = file
	m.fileData[id] = data
	return file
}

// GetFileData returns the file content
func (m *MockStorage) GetFileData(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.fileData[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

// GetFileCount returns the number of stored files
func (m *MockStorage) GetFileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// SaveCount returns how many times Save succeeded.
func (m *MockStorage) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// DeleteCount returns how many times Delete was called for id.
func (m *MockStorage) DeleteCount(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deleteCalls[id]
}

// TotalDeletes returns the number of Delete calls across all ids.
func (m *MockStorage) TotalDeletes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.deleteCalls {
		total += n
	}
	return total
}

var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("file-test-%d", testIDCounter)
}

// manager_test.go - Tests for storage layer
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func createTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates upload directory", func(t *testing.T) {
		uploadDir := filepath.Join(t.TempDir(), "nested", "uploads")

		store, err := NewLocalStore(uploadDir)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
			t.Error("Expected upload directory to be created")
		}
		if store.Dir() != uploadDir {
			t.Errorf("Expected dir %q, got %q", uploadDir, store.Dir())
		}
	})
}

func TestLocalStore_Save(t *testing.T) {
	t.Run("saves file from reader", func(t *testing.T) {
		store := createTestStore(t)

		content := "%PDF-1.4 fake"
		info, err := store.Save("Passport Scan.PDF", "application/pdf", strings.NewReader(content))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}

		if !strings.HasPrefix(info.ID, FilePrefix) {
			t.Errorf("Expected ID with prefix %q, got %q", FilePrefix, info.ID)
		}
		if !strings.HasSuffix(info.ID, ".pdf") {
			t.Errorf("Expected extension .pdf, got %q", info.ID)
		}
		if info.OriginalName != "Passport Scan.PDF" {
			t.Errorf("Expected original name preserved, got %q", info.OriginalName)
		}
		if info.MimeType != "application/pdf" {
			t.Errorf("Expected mime type application/pdf, got %q", info.MimeType)
		}
		if info.Size != int64(len(content)) {
			t.Errorf("Expected size %d, got %d", len(content), info.Size)
		}
		if info.StoredAt.IsZero() {
			t.Error("Expected StoredAt to be set")
		}

		data, err := os.ReadFile(info.Path)
		if err != nil {
			t.Fatalf("Failed to read saved file: %v", err)
		}
		if string(data) != content {
			t.Errorf("Expected content %q, got %q", content, string(data))
		}
	})

	t.Run("saves empty file", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.Save("empty.png", "image/png", strings.NewReader(""))
		if err != nil {
			t.Fatalf("Failed to save empty file: %v", err)
		}
		if info.Size != 0 {
			t.Errorf("Expected size 0, got %d", info.Size)
		}
		if _, err := os.Stat(info.Path); err != nil {
			t.Errorf("Expected empty file on disk: %v", err)
		}
	})

	t.Run("names are unique", func(t *testing.T) {
		store := createTestStore(t)

		a, err := store.Save("same.jpg", "image/jpeg", strings.NewReader("a"))
		if err != nil {
			t.Fatal(err)
		}
		b, err := store.Save("same.jpg", "image/jpeg", strings.NewReader("b"))
		if err != nil {
			t.Fatal(err)
		}
		if a.ID == b.ID || a.Path == b.Path {
			t.Error("Expected distinct stored names for the same original name")
		}
	})

	t.Run("removes partial file on read error", func(t *testing.T) {
		store := createTestStore(t)

		_, err := store.Save("broken.png", "image/png", &failingReader{})
		if err == nil {
			t.Fatal("Expected error from failing reader")
		}

		entries, _ := os.ReadDir(store.Dir())
		if len(entries) != 0 {
			t.Errorf("Expected no files left behind, found %d", len(entries))
		}
		if store.Count() != 0 {
			t.Errorf("Expected no tracked files, got %d", store.Count())
		}
	})
}

func TestLocalStore_GetAndPath(t *testing.T) {
	store := createTestStore(t)

	info, err := store.Save("doc.pdf", "application/pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(info.ID)
	if err != nil {
		t.Fatalf("Failed to get file: %v", err)
	}
	if got.ID != info.ID {
		t.Errorf("Expected ID %q, got %q", info.ID, got.ID)
	}

	path, err := store.GetFilePath(info.ID)
	if err != nil {
		t.Fatalf("Failed to get path: %v", err)
	}
	if path != info.Path {
		t.Errorf("Expected path %q, got %q", info.Path, path)
	}

	if _, err := store.Get("file-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetFilePath("file-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocalStore_Delete(t *testing.T) {
	t.Run("removes file and metadata", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.Save("doc.pdf", "application/pdf", strings.NewReader("x"))
		if err != nil {
			t.Fatal(err)
		}

		if err := store.Delete(info.ID); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if _, err := os.Stat(info.Path); !os.IsNotExist(err) {
			t.Error("Expected physical file to be removed")
		}
		if _, err := store.Get(info.ID); err == nil {
			t.Error("Expected metadata to be removed")
		}
	})

	t.Run("second delete reports not found", func(t *testing.T) {
		store := createTestStore(t)

		info, _ := store.Save("doc.pdf", "application/pdf", strings.NewReader("x"))
		_ = store.Delete(info.ID)

		if err := store.Delete(info.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("tolerates file already removed from disk", func(t *testing.T) {
		store := createTestStore(t)

		info, _ := store.Save("doc.pdf", "application/pdf", strings.NewReader("x"))
		os.Remove(info.Path)

		if err := store.Delete(info.ID); err != nil {
			t.Errorf("Expected nil error, got %v", err)
		}
	})
}

func TestLocalStore_SweepOlderThan(t *testing.T) {
	store := createTestStore(t)

	fresh, err := store.Save("fresh.png", "image/png", strings.NewReader("fresh"))
	if err != nil {
		t.Fatal(err)
	}
	stale, err := store.Save("stale.png", "image/png", strings.NewReader("stale"))
	if err != nil {
		t.Fatal(err)
	}

	// Orphan from an earlier process, unknown to the index.
	orphan := filepath.Join(store.Dir(), FilePrefix+"orphan.pdf")
	if err := os.WriteFile(orphan, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}
	// Foreign files are never touched.
	foreign := filepath.Join(store.Dir(), "keep.txt")
	if err := os.WriteFile(foreign, []byte("keep"), 0600); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-2 * time.Hour)
	for _, p := range []string{stale.Path, orphan, foreign} {
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.SweepOlderThan(time.Hour)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 files removed, got %d", removed)
	}

	if _, err := os.Stat(fresh.Path); err != nil {
		t.Error("Expected fresh file to survive")
	}
	if _, err := os.Stat(stale.Path); !os.IsNotExist(err) {
		t.Error("Expected stale file to be removed")
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Error("Expected orphan to be removed")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("Expected foreign file to survive")
	}
	if _, err := store.Get(stale.ID); err == nil {
		t.Error("Expected stale metadata to be dropped")
	}
	if store.Count() != 1 {
		t.Errorf("Expected 1 tracked file, got %d", store.Count())
	}
}

func TestLocalStore_ConcurrentAccess(t *testing.T) {
	store := createTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := store.Save("c.png", "image/png", strings.NewReader("data"))
			if err != nil {
				t.Errorf("Save failed: %v", err)
				return
			}
			if _, err := store.Get(info.ID); err != nil {
				t.Errorf("Get failed: %v", err)
			}
			if err := store.Delete(info.ID); err != nil {
				t.Errorf("Delete failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if store.Count() != 0 {
		t.Errorf("Expected empty store, got %d files", store.Count())
	}
}

type failingReader struct {
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		n := copy(p, "partial")
		return n, nil
	}
	return 0, io.ErrUnexpectedEOF
}

package session

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

var idPattern = regexp.MustCompile(`^session_\d+_[0-9a-f]{8}$`)

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if !idPattern.MatchString(id) {
			t.Fatalf("NewID() = %q, does not match %s", id, idPattern)
		}
		if seen[id] {
			t.Fatalf("NewID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	id, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if id != "" {
		t.Errorf("Load() on missing file = %q, want empty", id)
	}

	if err := store.Save("session_1_aaaaaaaa"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	reopened := NewFileStore(path)
	id, err = reopened.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if id != "session_1_aaaaaaaa" {
		t.Errorf("Load() = %q", id)
	}
}

func TestFileStore_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path).Load(); err == nil {
		t.Error("Load() should fail on a corrupted file")
	}
}

func TestFileStore_FailedReplaceRemovesTemp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	// a non-empty directory where the file belongs makes the rename fail
	if err := os.MkdirAll(filepath.Join(path, "occupied"), 0o700); err != nil {
		t.Fatal(err)
	}

	if err := NewFileStore(path).Save("session_1_aaaaaaaa"); err == nil {
		t.Fatal("Save() should fail when the file cannot be replaced")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: stat error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	id, _ := store.Load()
	if id != "" {
		t.Errorf("new MemoryStore Load() = %q", id)
	}

	_ = store.Save("a")
	_ = store.Save("b")
	id, _ = store.Load()
	if id != "b" {
		t.Errorf("Load() = %q, want b", id)
	}
}

package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	apierrors "github.com/diogo/bookrag/internal/errors"
)

type failingStore struct {
	loadErr error
	saveErr error
	id      string
}

func (s *failingStore) Load() (string, error) {
	return s.id, s.loadErr
}

func (s *failingStore) Save(id string) error {
	return s.saveErr
}

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("session_%d", n)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("creates and saves when empty", func(t *testing.T) {
		store := NewMemoryStore()
		m, err := NewManager(store, WithIDGenerator(sequence()))
		if err != nil {
			t.Fatalf("NewManager() error = %v", err)
		}
		if m.Current() != "session_1" {
			t.Errorf("Current() = %q", m.Current())
		}
		if stored, _ := store.Load(); stored != "session_1" {
			t.Errorf("stored id = %q", stored)
		}
	})

	t.Run("resumes stored id", func(t *testing.T) {
		store := NewMemoryStore()
		_ = store.Save("session_existing")

		m, err := NewManager(store, WithIDGenerator(sequence()))
		if err != nil {
			t.Fatalf("NewManager() error = %v", err)
		}
		if m.Current() != "session_existing" {
			t.Errorf("Current() = %q, want stored id", m.Current())
		}
	})

	t.Run("survives restart with file store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")

		first, err := NewManager(NewFileStore(path))
		if err != nil {
			t.Fatalf("NewManager() error = %v", err)
		}
		second, err := NewManager(NewFileStore(path))
		if err != nil {
			t.Fatalf("NewManager() error = %v", err)
		}
		if first.Current() != second.Current() {
			t.Errorf("ids differ across restart: %q vs %q", first.Current(), second.Current())
		}
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewManager(nil)
		if !errors.Is(err, apierrors.ErrNoSessionStore) {
			t.Errorf("NewManager(nil) error = %v", err)
		}
	})

	t.Run("load failure", func(t *testing.T) {
		_, err := NewManager(&failingStore{loadErr: errors.New("disk")})
		if err == nil {
			t.Error("NewManager() should propagate load errors")
		}
	})
}

func TestManager_Reset(t *testing.T) {
	store := NewMemoryStore()
	m, _ := NewManager(store, WithIDGenerator(sequence()))

	captured := m.Current()

	id, err := m.Reset()
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if id == captured {
		t.Error("Reset() should produce a new id")
	}
	if m.Current() != id {
		t.Errorf("Current() = %q, want %q", m.Current(), id)
	}
	if stored, _ := store.Load(); stored != id {
		t.Errorf("stored id = %q, want %q", stored, id)
	}
	if captured != "session_1" {
		t.Errorf("captured id changed to %q", captured)
	}
}

func TestManager_ResetSaveFailure(t *testing.T) {
	store := &failingStore{id: "session_keep"}
	m, err := NewManager(store)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	store.saveErr = errors.New("read-only")
	if _, err := m.Reset(); err == nil {
		t.Fatal("Reset() should fail")
	}
	if m.Current() != "session_keep" {
		t.Errorf("Current() = %q, previous id should remain", m.Current())
	}
}

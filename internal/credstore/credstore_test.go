package credstore

import (
	"os"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T, path string) *FileStore {
	t.Helper()
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestSaveAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := newStore(t, path)

	if s.HasSession() {
		t.Fatal("fresh store should have no session")
	}
	if s.AccessToken() != "" {
		t.Fatalf("AccessToken = %q, want empty", s.AccessToken())
	}

	if err := s.Save("acc-1", "ref-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.HasSession() {
		t.Fatal("HasSession should be true after Save")
	}
	if s.AccessToken() != "acc-1" || s.RefreshToken() != "ref-1" {
		t.Fatalf("tokens = %q/%q", s.AccessToken(), s.RefreshToken())
	}

	// Overwrite replaces both values.
	if err := s.Save("acc-2", "ref-2"); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	if s.AccessToken() != "acc-2" || s.RefreshToken() != "ref-2" {
		t.Fatalf("tokens after overwrite = %q/%q", s.AccessToken(), s.RefreshToken())
	}
}

func TestSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	s1 := newStore(t, path)
	if err := s1.Save("acc", "ref"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A second store over the same file sees the persisted pair.
	s2 := newStore(t, path)
	if !s2.HasSession() {
		t.Fatal("session should survive a restart")
	}
	if s2.AccessToken() != "acc" || s2.RefreshToken() != "ref" {
		t.Fatalf("tokens = %q/%q", s2.AccessToken(), s2.RefreshToken())
	}
}

func TestClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := newStore(t, path)

	// Clear with no session is safe.
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}

	if err := s.Save("acc", "ref"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.HasSession() {
		t.Fatal("HasSession should be false after Clear")
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("credential file should be removed, stat err = %v", err)
	}
}

func TestCorruptFileMeansNoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s := newStore(t, path)
	if s.HasSession() {
		t.Fatal("corrupt file should not produce a session")
	}
}

func TestFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := newStore(t, path)
	if err := s.Save("acc", "ref"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credential file mode = %o, want 0600", perm)
	}
}

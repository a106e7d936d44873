// Package credstore persists the access/refresh token pair across process
// restarts. The file store is the client-side equivalent of browser local
// storage: tokens survive restarts and are removed only by logout or forced
// expiry.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chemviz/chemviz/internal/model"
)

const (
	credFileMode = 0600
	credDirMode  = 0755
)

// Store is the credential persistence contract. Presence of an access token
// is the only session signal the store supplies; validity is the server's
// call.
type Store interface {
	// Save persists both tokens, overwriting any existing values.
	Save(access, refresh string) error
	// Clear removes both tokens. Idempotent.
	Clear() error
	// AccessToken returns the stored access token, or "" when absent.
	AccessToken() string
	// RefreshToken returns the stored refresh token, or "" when absent.
	RefreshToken() string
	// HasSession reports whether an access token is present. It performs no
	// validation; an expired-but-present token still counts until the
	// server rejects it.
	HasSession() bool
}

// FileStore keeps tokens in a JSON file, written atomically.
type FileStore struct {
	mu    sync.Mutex
	path  string
	creds model.Credentials
}

// NewFileStore opens (or lazily creates) the credential file at path and
// loads any tokens persisted by a previous run.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("credstore: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), credDirMode); err != nil {
		return nil, fmt.Errorf("credstore: mkdir: %w", err)
	}

	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("credstore: read: %w", err)
	}
	if err := json.Unmarshal(data, &s.creds); err != nil {
		// A corrupt file is treated as no session rather than a fatal
		// startup error; the next login rewrites it.
		s.creds = model.Credentials{}
	}
	return s, nil
}

// Save persists both tokens, overwriting any existing pair.
func (s *FileStore) Save(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds := model.Credentials{Access: access, Refresh: refresh}
	if err := writeFileAtomic(s.path, creds); err != nil {
		return err
	}
	s.creds = creds
	return nil
}

// Clear removes the credential file and forgets both tokens. Safe to call
// when no session exists.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = model.Credentials{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credstore: clear: %w", err)
	}
	return nil
}

// AccessToken returns the stored access token, or "" when absent.
func (s *FileStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Access
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *FileStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Refresh
}

// HasSession reports whether an access token is present.
func (s *FileStore) HasSession() bool {
	return s.AccessToken() != ""
}

// DefaultPath returns the conventional credential file location under the
// user's config directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("credstore: find home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chemviz", "credentials.json"), nil
}

func writeFileAtomic(path string, creds model.Credentials) error {
	payload, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("credstore: marshal: %w", err)
	}
	payload = append(payload, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, credFileMode); err != nil {
		return fmt.Errorf("credstore: write tmp: %w", err)
	}

	f, err := os.OpenFile(tmp, os.O_RDWR, credFileMode)
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("credstore: open tmp: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("credstore: sync tmp: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("credstore: close tmp: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("credstore: rename: %w", err)
	}
	return nil
}

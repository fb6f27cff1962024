// Package prefs is the process-wide preference store: last selected
// repository and per-repository column selections, persisted as a TOML
// file under the user's state directory.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Store is a persisted key to value mapping. Writes are last-writer-wins.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

const (
	keyLastRepo     = "last_repo"
	keyColumnPrefix = "columns."
)

// LastRepo reads the last selected repository.
func LastRepo(s Store) (string, bool) {
	return s.Get(keyLastRepo)
}

// SetLastRepo records the last selected repository.
func SetLastRepo(s Store, repoID string) error {
	return s.Set(keyLastRepo, repoID)
}

// Columns reads the column selection stored for one repository.
func Columns(s Store, repoID string) ([]string, bool) {
	v, ok := s.Get(keyColumnPrefix + repoID)
	if !ok || v == "" {
		return nil, false
	}
	return strings.Split(v, ","), true
}

// SetColumns stores a column selection for one repository. An empty
// selection clears the stored value so the default applies again.
func SetColumns(s Store, repoID string, columns []string) error {
	if len(columns) == 0 {
		return s.Delete(keyColumnPrefix + repoID)
	}
	return s.Set(keyColumnPrefix+repoID, strings.Join(columns, ","))
}

// FileStore persists preferences as a flat TOML table. The whole file is
// rewritten on every change; preferences are small and written rarely.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// DefaultPath returns the preference file location, honoring
// XDG_STATE_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "loupe", "prefs.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "loupe", "prefs.toml"), nil
}

// OpenFile loads (or initializes) the preference file at path.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]string)}
	if _, err := toml.DecodeFile(path, &s.values); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flush()
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

func (s *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	defer os.Remove(f.Name())
	if err := toml.NewEncoder(f).Encode(s.values); err != nil {
		f.Close()
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(f.Name(), s.path); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

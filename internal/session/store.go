package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ferroscope/ferro/internal/errors"
	"gopkg.in/yaml.v3"
)

// Record is the persisted session.
type Record struct {
	Token     string    `yaml:"token"`
	Username  string    `yaml:"username,omitempty"`
	APIURL    string    `yaml:"api_url,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Store persists a session record.
type Store interface {
	Load() (*Record, error)
	Save(Record) error
	Clear() error
}

// FileStore keeps the session in a YAML file readable only by the user.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the session file location.
func (s *FileStore) Path() string { return s.path }

// Load returns the stored record, or nil if there is none.
func (s *FileStore) Load() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot read session file "+s.path,
			"Check file permissions, or run 'ferro logout' to reset it")
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Session file is corrupted: "+s.path,
			"Run 'ferro logout' and sign in again")
	}
	if rec.Token == "" {
		return nil, nil
	}
	return &rec, nil
}

// Save writes rec atomically with 0600 permissions.
func (s *FileStore) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(rec)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot encode session", "")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create session directory "+dir,
			"Check permissions or set session.file in your config")
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot write session file", "")
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot secure session file", "")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot write session file", "")
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot write session file", "")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot replace session file "+s.path, "")
	}
	return nil
}

// Clear removes the session file. A missing file is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot remove session file "+s.path,
			"Delete it manually")
	}
	return nil
}

// MemoryStore keeps the session in memory.
type MemoryStore struct {
	mu     sync.Mutex
	rec    *Record
	clears int
}

// Load implements Store.
func (m *MemoryStore) Load() (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return nil, nil
	}
	rec := *m.rec
	return &rec, nil
}

// Save implements Store.
func (m *MemoryStore) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = &rec
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	m.clears++
	return nil
}

// Clears reports how many times Clear was called.
func (m *MemoryStore) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// Package session tracks whether the browser has been unlocked and until when.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/rdapgw/internal/log"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Session is the unlock state of the browser. A nil ExpiresAt on an
// authenticated session never expires.
type Session struct {
	Authenticated bool       `yaml:"authenticated"`
	ExpiresAt     *time.Time `yaml:"expires_at,omitempty"`
}

// Store persists a session between runs.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// Manager creates and checks sessions.
type Manager struct {
	clock    Clock
	duration time.Duration
	store    Store
}

// NewManager returns a manager whose sessions last duration. Zero means
// unlimited. store may be nil to keep sessions in memory only.
func NewManager(clock Clock, duration time.Duration, store Store) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Manager{clock: clock, duration: duration, store: store}
}

// Hours converts a configured session length in hours. Negative values are
// treated as unlimited.
func Hours(h int) time.Duration {
	if h <= 0 {
		return 0
	}
	return time.Duration(h) * time.Hour
}

// Duration is the configured session length. Zero means unlimited.
func (m *Manager) Duration() time.Duration {
	return m.duration
}

// Login starts a session.
func (m *Manager) Login() (Session, error) {
	s := Session{Authenticated: true}
	if m.duration > 0 {
		exp := m.clock.Now().Add(m.duration)
		s.ExpiresAt = &exp
	}
	log.Info(log.CatUI, "session started", "unlimited", s.ExpiresAt == nil)
	if m.store != nil {
		if err := m.store.Save(s); err != nil {
			return s, fmt.Errorf("saving session: %w", err)
		}
	}
	return s, nil
}

// Logout ends the session.
func (m *Manager) Logout() (Session, error) {
	log.Info(log.CatUI, "session ended")
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			return Session{}, fmt.Errorf("clearing session: %w", err)
		}
	}
	return Session{}, nil
}

// Valid reports whether s is authenticated and unexpired.
func (m *Manager) Valid(s Session) bool {
	if !s.Authenticated {
		return false
	}
	return s.ExpiresAt == nil || m.clock.Now().Before(*s.ExpiresAt)
}

// Remaining is the time left on s, or zero for an unlimited or invalid one.
func (m *Manager) Remaining(s Session) time.Duration {
	if !m.Valid(s) || s.ExpiresAt == nil {
		return 0
	}
	return s.ExpiresAt.Sub(m.clock.Now())
}

// Restore loads the persisted session. An expired session is cleared from
// the store and a fresh unauthenticated one returned.
func (m *Manager) Restore() (Session, error) {
	if m.store == nil {
		return Session{}, nil
	}
	s, err := m.store.Load()
	if err != nil {
		return Session{}, fmt.Errorf("loading session: %w", err)
	}
	if s.Authenticated && !m.Valid(s) {
		log.Info(log.CatUI, "session expired")
		return m.Logout()
	}
	return s, nil
}

// FileStore keeps the session in a YAML file.
type FileStore struct {
	Path string
}

// Load reads the session. A missing file is an unauthenticated session.
func (f FileStore) Load() (Session, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parsing %s: %w", f.Path, err)
	}
	return s, nil
}

// Save writes the session.
func (f FileStore) Save(s Session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o600)
}

// Clear removes the session file.
func (f FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

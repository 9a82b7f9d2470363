package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

var start = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestManager_ExpiringSession(t *testing.T) {
	clock := &fakeClock{now: start}
	m := NewManager(clock, Hours(2), nil)

	require.False(t, m.Valid(Session{}))

	s, err := m.Login()
	require.NoError(t, err)
	require.True(t, s.Authenticated)
	require.Equal(t, start.Add(2*time.Hour), *s.ExpiresAt)
	require.True(t, m.Valid(s))
	require.Equal(t, 2*time.Hour, m.Remaining(s))

	clock.advance(119 * time.Minute)
	require.True(t, m.Valid(s))

	clock.advance(time.Minute)
	require.False(t, m.Valid(s))
	require.Zero(t, m.Remaining(s))
}

func TestManager_UnlimitedSession(t *testing.T) {
	clock := &fakeClock{now: start}
	m := NewManager(clock, Hours(0), nil)

	s, err := m.Login()
	require.NoError(t, err)
	require.Nil(t, s.ExpiresAt)

	clock.advance(10 * 365 * 24 * time.Hour)
	require.True(t, m.Valid(s))
	require.Zero(t, m.Remaining(s))
}

func TestManager_Logout(t *testing.T) {
	m := NewManager(&fakeClock{now: start}, 0, nil)
	s, _ := m.Login()
	require.True(t, m.Valid(s))

	s, err := m.Logout()
	require.NoError(t, err)
	require.False(t, m.Valid(s))
}

func TestHours(t *testing.T) {
	require.Equal(t, time.Duration(0), Hours(-3))
	require.Equal(t, time.Duration(0), Hours(0))
	require.Equal(t, 24*time.Hour, Hours(24))
	require.Equal(t, 24*time.Hour, NewManager(nil, Hours(24), nil).Duration())
}

func TestManager_RestoreFromFile(t *testing.T) {
	clock := &fakeClock{now: start}
	store := FileStore{Path: filepath.Join(t.TempDir(), "state", "session.yaml")}
	m := NewManager(clock, Hours(1), store)

	s, err := m.Restore()
	require.NoError(t, err)
	require.False(t, s.Authenticated)

	_, err = m.Login()
	require.NoError(t, err)

	restored, err := NewManager(clock, Hours(1), store).Restore()
	require.NoError(t, err)
	require.True(t, restored.Authenticated)
	require.True(t, restored.ExpiresAt.Equal(start.Add(time.Hour)))

	clock.advance(2 * time.Hour)
	restored, err = m.Restore()
	require.NoError(t, err)
	require.False(t, restored.Authenticated)

	// the expired session was removed
	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, Session{}, loaded)
}

func TestFileStore_ClearMissing(t *testing.T) {
	store := FileStore{Path: filepath.Join(t.TempDir(), "none.yaml")}
	require.NoError(t, store.Clear())
}

func TestFileStore_BadYAML(t *testing.T) {
	dir := t.TempDir()
	store := FileStore{Path: filepath.Join(dir, "session.yaml")}
	require.NoError(t, writeFile(store.Path, "authenticated: [oops"))

	_, err := store.Load()
	require.Error(t, err)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

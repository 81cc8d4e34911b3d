package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "rdtrack.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("original contents"), 0644))
	return NewManager(dbPath, filepath.Join(dir, "backups"))
}

func TestCreateAndList(t *testing.T) {
	m := newTestManager(t)

	info, err := m.Create()
	require.NoError(t, err)
	assert.Contains(t, info.Name, "rdtrack-")
	assert.Equal(t, int64(len("original contents")), info.Size)

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, info.Name, backups[0].Name)
}

func TestList_NoDirectory(t *testing.T) {
	m := NewManager("/nonexistent/db", filepath.Join(t.TempDir(), "never-created"))
	backups, err := m.List()
	require.NoError(t, err)
	assert.Len(t, backups, 0)
}

func TestList_IgnoresForeignFiles(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(m.Dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(m.Dir, "other.db"), []byte("x"), 0644))

	backups, err := m.List()
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestRestore(t *testing.T) {
	m := newTestManager(t)

	info, err := m.Create()
	require.NoError(t, err)

	// Simulate subsequent writes, then restore
	require.NoError(t, os.WriteFile(m.DBPath, []byte("corrupted"), 0644))
	require.NoError(t, m.Restore(info.Name))

	data, err := os.ReadFile(m.DBPath)
	require.NoError(t, err)
	assert.Equal(t, "original contents", string(data))
}

func TestRestore_RejectsPaths(t *testing.T) {
	m := newTestManager(t)
	assert.Error(t, m.Restore("../../etc/passwd"))
	assert.Error(t, m.Restore("no-such-backup.db"))
}

func TestCleanup(t *testing.T) {
	m := newTestManager(t)

	// Backup names embed second-resolution timestamps; write files directly
	// so the three names differ without sleeping.
	require.NoError(t, os.MkdirAll(m.Dir, 0755))
	for _, name := range []string{
		"rdtrack-20260101-100000.db",
		"rdtrack-20260102-100000.db",
		"rdtrack-20260103-100000.db",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(m.Dir, name), []byte("x"), 0644))
	}

	removed, err := m.Cleanup(2)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 2)
	// Oldest was removed
	assert.Equal(t, "rdtrack-20260103-100000.db", backups[0].Name)
	assert.Equal(t, "rdtrack-20260102-100000.db", backups[1].Name)

	removed, err = m.Cleanup(10)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestBackupInfoTimestamps(t *testing.T) {
	m := newTestManager(t)
	before := time.Now().Add(-time.Minute)

	info, err := m.Create()
	require.NoError(t, err)
	assert.True(t, info.CreatedAt.After(before))
}

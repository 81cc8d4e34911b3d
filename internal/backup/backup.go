// Package backup manages point-in-time copies of the SQLite database.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const filePrefix = "rdtrack-"

// Manager creates and restores database backups in a dedicated directory.
type Manager struct {
	DBPath string
	Dir    string
}

// Info describes one backup file.
type Info struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewManager(dbPath, dir string) *Manager {
	return &Manager{DBPath: dbPath, Dir: dir}
}

// Create copies the live database into the backup directory. The backup
// name embeds a timestamp so names sort chronologically.
func (m *Manager) Create() (*Info, error) {
	if err := os.MkdirAll(m.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	name := filePrefix + time.Now().Format("20060102-150405") + ".db"
	dest := filepath.Join(m.Dir, name)

	if err := copyFile(m.DBPath, dest); err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}

	fi, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}
	return &Info{Name: name, Path: dest, Size: fi.Size(), CreatedAt: fi.ModTime()}, nil
}

// List returns all backups, newest first.
func (m *Manager) List() ([]*Info, error) {
	entries, err := os.ReadDir(m.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []*Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".db") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, &Info{
			Name:      name,
			Path:      filepath.Join(m.Dir, name),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Restore replaces the live database with the named backup. The caller must
// reopen the store afterwards; open connections still see the old file.
func (m *Manager) Restore(name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid backup name: %s", name)
	}
	src := filepath.Join(m.Dir, name)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("backup not found: %s", name)
	}

	if err := copyFile(src, m.DBPath); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	// Drop stale WAL sidecars so the restored file is read as-is
	_ = os.Remove(m.DBPath + "-wal")
	_ = os.Remove(m.DBPath + "-shm")
	return nil
}

// Cleanup deletes all but the newest keep backups and returns how many
// were removed.
func (m *Manager) Cleanup(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	removed := 0
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("remove backup %s: %w", b.Name, err)
		}
		removed++
	}
	return removed, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"tracker/schema"
)

// DirName is the backups root beneath the data directory
const DirName = "backups"

// dirStamp is the sortable timestamp layout for backup directory names
const dirStamp = "20060102_150405"

// Manager creates and restores point-in-time snapshots of all table files.
// Backups are never pruned; unbounded retention is a deliberate simplicity
// trade-off.
type Manager struct {
	dataDir string
	reg     *schema.Registry
	log     *zap.Logger
	now     func() time.Time
}

// New creates a backup Manager over dataDir
func New(dataDir string, reg *schema.Registry, log *zap.Logger) *Manager {
	return &Manager{dataDir: dataDir, reg: reg, log: log, now: time.Now}
}

// Root returns the backups root directory path
func (m *Manager) Root() string {
	return filepath.Join(m.dataDir, DirName)
}

// Create snapshots every existing table file into a timestamp-named
// directory and returns its path. If the data directory does not exist there
// is nothing to back up and an error is returned.
func (m *Manager) Create() (string, error) {
	if _, err := os.Stat(m.dataDir); os.IsNotExist(err) {
		return "", fmt.Errorf("data directory %s does not exist", m.dataDir)
	}

	dir := filepath.Join(m.Root(), "backup_"+m.now().Format(dirStamp))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	copied := 0
	for _, file := range m.reg.Files() {
		src := filepath.Join(m.dataDir, file)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(dir, file)); err != nil {
			return "", fmt.Errorf("copy %s: %w", file, err)
		}
		copied++
	}

	m.log.Info("created backup", zap.String("path", dir), zap.Int("files", copied))
	return dir, nil
}

// List returns the available backup directory names, newest last (the
// timestamp naming makes lexical order chronological)
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.Root())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups root: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "backup_") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Restore overwrites the current table files with those from the chosen
// backup. A fresh backup of the current state is taken first as a safety net.
func (m *Manager) Restore(backupPath string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup %s: %w", backupPath, err)
	}

	safety, err := m.Create()
	if err != nil {
		return fmt.Errorf("safety backup: %w", err)
	}
	m.log.Info("safety backup before restore", zap.String("path", safety))

	restored := 0
	for _, file := range m.reg.Files() {
		src := filepath.Join(backupPath, file)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(m.dataDir, file)); err != nil {
			return fmt.Errorf("restore %s: %w", file, err)
		}
		restored++
	}

	m.log.Info("restored backup", zap.String("path", backupPath), zap.Int("files", restored))
	return nil
}

// copyFile copies src to dst, truncating any existing dst
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

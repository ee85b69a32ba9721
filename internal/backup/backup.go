// Package backup keeps timestamped copies of the nippo data directory.
// Each backup is a directory under <data dir>/backups holding the data files
// that existed at the time plus a manifest with history and report counts.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"nippo/internal/fsutil"
)

// Version constants for the backup format.
const (
	ManifestVersion = "1.0"
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"
)

const (
	dataFile   = "data.json"
	sqliteFile = "nippo.db"
	sqliteWAL  = "nippo.db-wal"
	sqliteSHM  = "nippo.db-shm"
)

// Files that are backed up when present. Either the JSON files or the
// SQLite database exist, depending on the configured storage backend.
var dataFiles = []string{dataFile, "session.json", "theme.json", sqliteFile, sqliteWAL}

// sqliteHeader is the magic string at the start of every SQLite 3 database.
var sqliteHeader = []byte("SQLite format 3\x00")

// ErrNoBackups is returned by RestoreLatest when the backup directory is empty.
var ErrNoBackups = errors.New("no backups available")

// Manager handles backup and restore operations.
type Manager struct {
	dataDir    string // Path to data directory (e.g., ~/.nippo)
	backupDir  string // Path to backups directory (e.g., ~/.nippo/backups)
	appVersion string // Application version for manifest
	now        func() time.Time
}

// Manifest contains metadata about a backup.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Files      []string       `json:"files"`
	Stats      map[string]int `json:"stats"`
}

// BackupInfo contains summary information about a backup.
type BackupInfo struct {
	Name      string         // Directory name (2025-12-15_143022_123)
	Path      string         // Full path to backup directory
	CreatedAt time.Time      // When the backup was created
	Stats     map[string]int // customers, tasks, reports
	Size      int64          // Total bytes of the copied files
	Files     []string       // Data files held by the backup
}

// Age describes how long before now the backup was taken ("3 hours ago").
func (b BackupInfo) Age(now time.Time) string {
	return humanize.RelTime(b.CreatedAt, now, "ago", "from now")
}

// HumanSize formats Size for listings ("12 kB").
func (b BackupInfo) HumanSize() string {
	return humanize.Bytes(uint64(b.Size))
}

// NewManager creates a new backup manager.
func NewManager(dataDir, appVersion string) *Manager {
	return &Manager{
		dataDir:    dataDir,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
		now:        time.Now,
	}
}

// SetNowFunc overrides the clock used for backup names and manifests.
func (m *Manager) SetNowFunc(now func() time.Time) {
	if now == nil {
		m.now = time.Now
		return
	}
	m.now = now
}

// Dir returns the directory backups are written to.
func (m *Manager) Dir() string {
	return m.backupDir
}

// Create creates a new backup of all data files.
// Returns the backup name (timestamp format) on success.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Milliseconds keep names unique across quick successive backups
	now := m.now()
	name := fmt.Sprintf("%s_%03d", now.Format("2006-01-02_150405"), now.Nanosecond()/1e6)
	backupPath := filepath.Join(m.backupDir, name)

	if err := os.Mkdir(backupPath, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	var copiedFiles []string
	stats := make(map[string]int)

	for _, filename := range dataFiles {
		srcPath := filepath.Join(m.dataDir, filename)
		dstPath := filepath.Join(backupPath, filename)

		if _, err := os.Stat(srcPath); os.IsNotExist(err) {
			continue
		}

		if err := copyFileAtomic(srcPath, dstPath); err != nil {
			_ = os.RemoveAll(backupPath)
			return "", fmt.Errorf("failed to copy %s: %w", filename, err)
		}
		copiedFiles = append(copiedFiles, filename)

		if filename == dataFile {
			if counts, err := countItems(srcPath); err == nil {
				for k, v := range counts {
					stats[k] = v
				}
			}
		}
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Files:      copiedFiles,
		Stats:      stats,
	}

	manifestPath := filepath.Join(backupPath, ManifestFile)
	if err := writeJSON(manifestPath, manifest); err != nil {
		_ = os.RemoveAll(backupPath)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return name, nil
}

// List returns all available backups, sorted by creation time (newest first).
func (m *Manager) List() ([]BackupInfo, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.info(entry.Name())
		if err != nil {
			continue // not a backup directory
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Restore restores data from a specific backup.
// It creates a safety backup before restoring.
func (m *Manager) Restore(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}

	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}

	var manifest Manifest
	if err := readJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		manifest.Files = dataFiles
	}

	// Validate before touching the live data
	for _, filename := range manifest.Files {
		if err := validateFile(filepath.Join(backupPath, filename)); err != nil {
			return fmt.Errorf("backup file %s is invalid: %w", filename, err)
		}
	}

	safetyName, err := m.Create()
	if err != nil {
		return fmt.Errorf("failed to create safety backup: %w", err)
	}

	if restoresFile(manifest.Files, sqliteFile) {
		// A leftover log from the live database would be replayed on top of
		// the restored copy.
		for _, stale := range []string{sqliteWAL, sqliteSHM} {
			if restoresFile(manifest.Files, stale) {
				continue
			}
			if err := os.Remove(filepath.Join(m.dataDir, stale)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s (safety backup: %s): %w", stale, safetyName, err)
			}
		}
	}

	for _, filename := range manifest.Files {
		srcPath := filepath.Join(backupPath, filename)
		dstPath := filepath.Join(m.dataDir, filename)

		if _, err := os.Stat(srcPath); os.IsNotExist(err) {
			continue
		}
		if err := copyFileAtomic(srcPath, dstPath); err != nil {
			return fmt.Errorf("failed to restore %s (safety backup: %s): %w", filename, safetyName, err)
		}
	}

	return nil
}

// RestoreLatest restores from the most recent backup and returns its name.
func (m *Manager) RestoreLatest() (string, error) {
	backups, err := m.List()
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", ErrNoBackups
	}

	name := backups[0].Name
	return name, m.Restore(name)
}

// Delete removes a specific backup.
func (m *Manager) Delete(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}

	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}

	return os.RemoveAll(backupPath)
}

// Prune removes old backups, keeping only the N most recent.
func (m *Manager) Prune(keepCount int) (int, error) {
	if keepCount < 0 {
		return 0, fmt.Errorf("keepCount must be non-negative")
	}

	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keepCount {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keepCount:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

// GetBackup returns information about a specific backup.
func (m *Manager) GetBackup(name string) (*BackupInfo, error) {
	if err := validateBackupName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(m.backupDir, name)); os.IsNotExist(err) {
		return nil, fmt.Errorf("backup not found: %s", name)
	}
	return m.info(name)
}

func (m *Manager) info(name string) (*BackupInfo, error) {
	backupPath := filepath.Join(m.backupDir, name)

	var manifest Manifest
	if err := readJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		createdAt, parseErr := parseBackupName(name)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid backup: %s", name)
		}
		manifest.CreatedAt = createdAt
	}
	if manifest.Stats == nil {
		manifest.Stats = make(map[string]int)
	}

	var (
		size  int64
		files []string
	)
	if entries, err := os.ReadDir(backupPath); err == nil {
		for _, e := range entries {
			if e.Name() == ManifestFile {
				continue
			}
			if fi, err := e.Info(); err == nil && !fi.IsDir() {
				size += fi.Size()
				if restoresFile(dataFiles, e.Name()) {
					files = append(files, e.Name())
				}
			}
		}
	}

	return &BackupInfo{
		Name:      name,
		Path:      backupPath,
		CreatedAt: manifest.CreatedAt,
		Stats:     manifest.Stats,
		Size:      size,
		Files:     files,
	}, nil
}

// Helper functions

func validateBackupName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseBackupName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

func restoresFile(files []string, name string) bool {
	for _, f := range files {
		if f == name {
			return true
		}
	}
	return false
}

func copyFileAtomic(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(dst, data, 0600)
}

// writeJSON writes a value as JSON to a file.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

// readJSON reads JSON from a file into a value.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// validateFile checks a backed-up file before it is restored: JSON files must
// parse and the database must carry the SQLite header. Missing files are OK.
func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	switch filepath.Base(path) {
	case sqliteWAL:
		return nil
	case sqliteFile:
		if len(data) > 0 && !strings.HasPrefix(string(data), string(sqliteHeader)) {
			return fmt.Errorf("not a SQLite database")
		}
		return nil
	}

	var v interface{}
	return json.Unmarshal(data, &v)
}

// countItems reads history and report counts from a data.json file.
func countItems(path string) (map[string]int, error) {
	var data struct {
		Customers []json.RawMessage `json:"customers"`
		Tasks     []json.RawMessage `json:"tasks"`
		Reports   []json.RawMessage `json:"reports"`
	}
	if err := readJSON(path, &data); err != nil {
		return nil, err
	}
	return map[string]int{
		"customers": len(data.Customers),
		"tasks":     len(data.Tasks),
		"reports":   len(data.Reports),
	}, nil
}

// parseBackupName parses a backup directory name into a timestamp.
// Accepts 2006-01-02_150405 and 2006-01-02_150405_XXX (milliseconds).
func parseBackupName(name string) (time.Time, error) {
	if len(name) == 21 {
		baseTime, err := time.Parse("2006-01-02_150405", name[:17])
		if err != nil {
			return time.Time{}, err
		}
		if name[17] != '_' {
			return time.Time{}, fmt.Errorf("invalid backup format")
		}
		ms, err := strconv.Atoi(name[18:])
		if err != nil || ms < 0 || ms > 999 {
			return time.Time{}, fmt.Errorf("invalid milliseconds")
		}
		return baseTime.Add(time.Duration(ms) * time.Millisecond), nil
	}

	return time.Parse("2006-01-02_150405", name)
}

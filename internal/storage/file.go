package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nippo/internal/fsutil"
	"nippo/internal/logging"
)

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600
)

// FileKV stores each key as <dir>/<key>.json. Every write keeps the previous
// version as a .bak file, and a value that no longer parses is restored from
// that backup when possible.
type FileKV struct {
	dir string
	now func() time.Time
}

// NewFileKV creates dir if needed and returns a KV rooted there.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileKV{dir: dir, now: time.Now}, nil
}

// Dir returns the data directory.
func (f *FileKV) Dir() string {
	return f.dir
}

// Path returns the file that holds key.
func (f *FileKV) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileKV) Get(key string) ([]byte, error) {
	path := f.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if len(bytes.TrimSpace(data)) > 0 && json.Valid(data) {
		return data, nil
	}
	return f.recover(key)
}

// recover replaces an unreadable file with its backup. Without a usable
// backup the broken file is moved aside and ErrCorrupt is returned.
func (f *FileKV) recover(key string) ([]byte, error) {
	path := f.Path(key)

	bak, err := os.ReadFile(fsutil.BackupPath(path))
	if err == nil && len(bytes.TrimSpace(bak)) > 0 && json.Valid(bak) {
		moved, _ := fsutil.Quarantine(path, f.now())
		if err := fsutil.WriteFileAtomic(path, bak, dataFilePerm); err != nil {
			return nil, fmt.Errorf("restore %s from backup: %w", filepath.Base(path), err)
		}
		logging.Warn("storage", "%s was unreadable, restored from backup (original moved to %s)", filepath.Base(path), moved)
		return bak, nil
	}

	moved, qerr := fsutil.Quarantine(path, f.now())
	if qerr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, filepath.Base(path), qerr)
	}
	return nil, fmt.Errorf("%w: %s (original moved to %s)", ErrCorrupt, filepath.Base(path), moved)
}

func (f *FileKV) Set(key string, value []byte) error {
	path := f.Path(key)
	fsutil.BestEffortBackup(path, dataFilePerm)
	if err := fsutil.WriteFileAtomic(path, value, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (f *FileKV) Delete(key string) error {
	path := f.Path(key)
	fsutil.BestEffortBackup(path, dataFilePerm)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (f *FileKV) Close() error { return nil }

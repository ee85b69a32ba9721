// Package fsutil holds the small file primitives the file-backed store is
// built on.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// WriteFileAtomic replaces path with data via a temp file in the same
// directory, so a crash mid-write never leaves a truncated file behind.
//
// Windows cannot rename over an existing file; there the destination is
// removed first, which is best-effort rather than atomic.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, data, perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if runtime.GOOS != "windows" || !replaceOnWindows(tmpPath, path) {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("rename %s -> %s: %w", tmpPath, path, err)
		}
	}

	syncDir(dir)
	return nil
}

func writeAndSync(f *os.File, data []byte, perm os.FileMode) error {
	if err := f.Chmod(perm); err != nil {
		return fmt.Errorf("chmod %s: %w", f.Name(), err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", f.Name(), err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("fsync %s: %w", f.Name(), err)
	}
	return nil
}

func replaceOnWindows(tmpPath, path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		return false
	}
	return os.Rename(tmpPath, path) == nil
}

// BestEffortBackup copies the current contents of path to path+".bak".
// Failures are ignored; a missing backup only matters during recovery.
func BestEffortBackup(path string, perm os.FileMode) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = WriteFileAtomic(BackupPath(path), data, perm)
}

// BackupPath returns where BestEffortBackup keeps the copy of path.
func BackupPath(path string) string {
	return path + ".bak"
}

// Quarantine moves an unreadable file aside as path.corrupt.<timestamp> and
// returns the new name.
func Quarantine(path string, now time.Time) (string, error) {
	dest := fmt.Sprintf("%s.corrupt.%s", path, now.Format("20060102-150405"))
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("quarantine %s: %w", path, err)
	}
	return dest, nil
}

func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}

package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/corpuskit/corpuskit/internal/corpuserr"
)

// MaxBackups is the maximum number of config backups kept per file.
const MaxBackups = 3

// BackupSuffix is the file extension for backup files.
const BackupSuffix = ".bak"

// BackupConfigFile creates a timestamped backup of path, returning the
// backup's path. If path does not exist, returns "" and nil error.
func BackupConfigFile(path string) (string, error) {
	if !fileExists(path) {
		return "", nil
	}

	timestamp := time.Now().Format("20060102-150405")
	backupPath := path + BackupSuffix + "." + timestamp

	data, err := os.ReadFile(path)
	if err != nil {
		return "", corpuserr.IOError(corpuserr.CodeIOReadFailed, "read config for backup", err).WithFile(path)
	}
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", corpuserr.IOError(corpuserr.CodeIOWriteFailed, "write config backup", err).WithFile(backupPath)
	}

	_ = cleanupOldBackups(path)

	return backupPath, nil
}

// ListConfigBackups returns path's backup files, newest first.
func ListConfigBackups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, corpuserr.IOError(corpuserr.CodeIOReadFailed, "list config directory", err).WithFile(dir)
	}

	prefix := base + BackupSuffix + "."
	var backups []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Slice(backups, func(i, j int) bool {
		infoI, errI := os.Stat(backups[i])
		infoJ, errJ := os.Stat(backups[j])
		if errI != nil || errJ != nil {
			return false
		}
		return infoI.ModTime().After(infoJ.ModTime())
	})
	return backups, nil
}

func cleanupOldBackups(path string) error {
	backups, err := ListConfigBackups(path)
	if err != nil {
		return err
	}
	if len(backups) <= MaxBackups {
		return nil
	}
	for _, b := range backups[MaxBackups:] {
		os.Remove(b)
	}
	return nil
}

// RestoreConfigFile restores path from backupPath, first backing up
// path's current contents (if any).
func RestoreConfigFile(path, backupPath string) error {
	if !fileExists(backupPath) {
		return corpuserr.IOError(corpuserr.CodeIOReadFailed, "backup file not found", nil).WithFile(backupPath)
	}

	if fileExists(path) {
		if _, err := BackupConfigFile(path); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return corpuserr.IOError(corpuserr.CodeIOReadFailed, "read backup", err).WithFile(backupPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "create config directory", err).WithFile(path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "write restored config", err).WithFile(path)
	}
	return nil
}

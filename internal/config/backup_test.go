package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupConfigFile_NoFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".corpuskit.yaml")
	backup, err := BackupConfigFile(path)
	require.NoError(t, err)
	assert.Empty(t, backup)
}

func TestBackupConfigFile_CreatesTimestampedCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".corpuskit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  chunk_size: 999\n"), 0o644))

	backup, err := BackupConfigFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, backup)

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Contains(t, string(data), "999")
}

func TestListConfigBackups_NoneReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".corpuskit.yaml")
	backups, err := ListConfigBackups(path)
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestBackupConfigFile_KeepsOnlyMaxBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".corpuskit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  chunk_size: 1\n"), 0o644))

	for i := 0; i < MaxBackups+2; i++ {
		_, err := BackupConfigFile(path)
		require.NoError(t, err)
		time.Sleep(1100 * time.Millisecond)
	}

	backups, err := ListConfigBackups(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(backups), MaxBackups)
}

func TestRestoreConfigFile_RestoresPreviousContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".corpuskit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  chunk_size: 111\n"), 0o644))

	backup, err := BackupConfigFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, backup)

	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  chunk_size: 222\n"), 0o644))

	require.NoError(t, RestoreConfigFile(path, backup))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "111")
}

func TestRestoreConfigFile_MissingBackupErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".corpuskit.yaml")
	err := RestoreConfigFile(path, filepath.Join(t.TempDir(), "missing.bak"))
	assert.Error(t, err)
}

package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, RecordHistory(db, HistoryEntry{Service: "web", Action: "start", Result: ResultOK, CreatedAt: base}))
	require.NoError(t, RecordHistory(db, HistoryEntry{Service: "api", Action: "load", Result: ResultOK, CreatedAt: base}))
	require.NoError(t, RecordHistory(db, HistoryEntry{Service: "web", Action: "stop", Result: ResultFailed, Detail: "already stopped"}))

	all, err := ListHistory(db, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "stop", all[0].Action, "newest first")
	assert.Equal(t, "already stopped", all[0].Detail)
	assert.False(t, all[0].CreatedAt.IsZero())

	web, err := ListHistory(db, "web", 0)
	require.NoError(t, err)
	require.Len(t, web, 2)
	assert.Equal(t, "start", web[1].Action)
	assert.True(t, base.Equal(web[1].CreatedAt))

	limited, err := ListHistory(db, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestInitDBReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := InitDB(path)
	require.NoError(t, err)
	require.NoError(t, RecordHistory(db, HistoryEntry{Service: "web", Action: "start", Result: ResultOK}))
	require.NoError(t, db.Close())

	db, err = InitDB(path)
	require.NoError(t, err)
	defer db.Close()

	entries, err := ListHistory(db, "web", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveAndLoadPath(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "home", "env.txt")

	_, err := LoadPath(envFile)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, SavePath(envFile, "/usr/local/bin:/usr/bin"))
	got, err := LoadPath(envFile)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin:/usr/bin", got)

	info, err := os.Stat(envFile)
	require.NoError(t, err)
	mtime := info.ModTime()

	require.NoError(t, SavePath(envFile, "/usr/local/bin:/usr/bin"))
	info, err = os.Stat(envFile)
	require.NoError(t, err)
	assert.Equal(t, mtime, info.ModTime(), "unchanged PATH is not rewritten")
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}

package registry

import (
	"os"
	"path/filepath"
	"testing"

	"svcman/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "services.json"), nil)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := newStore(t)

	records, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAddThenLoad(t *testing.T) {
	s := newStore(t)

	names := []string{"web", "worker", "web.v2", "a"}
	for i, name := range names {
		rec := Record{MainFile: filepath.Join("/srv", name, "run.py"), Startup: i%2 == 0}
		require.NoError(t, s.Add(name, rec))

		records, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, rec, records[name])
		assert.Len(t, records, i+1)
	}

	got, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "web", "web.v2", "worker"}, got)
}

func TestAddDuplicate(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add("web", Record{MainFile: "/srv/web/run.py"}))

	err := s.Add("web", Record{MainFile: "/other.py"})
	require.ErrorIs(t, err, models.ErrAlreadyExists)

	rec, err := s.Get("web")
	require.NoError(t, err)
	assert.Equal(t, "/srv/web/run.py", rec.MainFile)
}

func TestRemoveMissingDoesNotTouchFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add("web", Record{MainFile: "/srv/web/run.py"}))

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	stat, err := os.Stat(s.Path())
	require.NoError(t, err)

	err = s.Remove("ghost")
	require.ErrorIs(t, err, models.ErrNotFound)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	stat2, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, stat.ModTime(), stat2.ModTime())
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add("web", Record{MainFile: "/srv/web/run.py"}))
	require.NoError(t, s.Remove("web"))

	_, err := s.Get("web")
	require.ErrorIs(t, err, models.ErrNotFound)
	require.ErrorIs(t, s.Remove("web"), models.ErrNotFound)
}

func TestSetStartup(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add("web", Record{MainFile: "/srv/web/run.py"}))

	require.NoError(t, s.SetStartup("web", true))
	rec, err := s.Get("web")
	require.NoError(t, err)
	assert.True(t, rec.Startup)

	require.ErrorIs(t, s.SetStartup("ghost", true), models.ErrNotFound)
}

func TestFileFormat(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Ensure())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	require.NoError(t, s.Add("web", Record{MainFile: "/srv/web/run.py", Startup: true}))
	data, err = os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"web": {"mainfile": "/srv/web/run.py", "startup": true}}`, string(data))
}

func TestLoadCorrupt(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	_, err := s.Load()
	require.Error(t, err)
}

func TestLoadNull(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("null\n"), 0o600))

	records, err := s.Load()
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	require.NoError(t, s.Add("web", Record{MainFile: "/srv/web/run.py"}))
	require.NoError(t, s.SetStartup("web", true))
	rec, err := s.Get("web")
	require.NoError(t, err)
	assert.True(t, rec.Startup)
}

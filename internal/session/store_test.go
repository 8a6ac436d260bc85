package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "nested", "session.json")),
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Load()
			require.NoError(t, err)
			assert.False(t, ok, "fresh store must be empty")

			require.NoError(t, store.Save("abc"))
			token, ok, err := store.Load()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", token)

			require.NoError(t, store.Clear())
			_, ok, err = store.Load()
			require.NoError(t, err)
			assert.False(t, ok)

			// Clearing twice is fine.
			require.NoError(t, store.Clear())
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("first"))
			require.NoError(t, store.Save("second"))
			token, ok, err := store.Load()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "second", token)
		})
	}
}

func TestStore_RejectsEmptyToken(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, store.Save(""), ErrEmptyToken)
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, NewFileStore(path).Save("xyz"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessionToken":"xyz"}`, string(data))

	token, ok, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, _, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestSQLiteStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save("persisted"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	token, ok, err := second.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", token)
}

func TestCurrent(t *testing.T) {
	store := NewMemoryStore()

	s, err := Current(store)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	require.NoError(t, store.Save("tok"))
	s, err = Current(store)
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok", s.Token())
}

func TestNew_TrimsWhitespace(t *testing.T) {
	assert.False(t, New("   ").Authenticated())
	assert.Equal(t, "abc", New(" abc\n").Token())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("file", filepath.Join(dir, "s.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	assert.NoError(t, Close(s))

	s, err = Open("sqlite", filepath.Join(dir, "s.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	assert.NoError(t, Close(s))

	s, err = Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open("redis", "")
	assert.Error(t, err)
}

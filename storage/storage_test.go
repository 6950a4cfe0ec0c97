package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/martory/go-tenant-session/storage"
	"github.com/stretchr/testify/require"
)

type settings struct {
	Theme string `json:"theme"`
}

func backends(t *testing.T) map[string]storage.Storage {
	t.Helper()
	f, err := storage.OpenFile(filepath.Join(t.TempDir(), "nested", "state.json"))
	require.NoError(t, err)
	return map[string]storage.Storage{
		"memory": storage.NewMemory(),
		"file":   f,
	}
}

func TestStorage_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := s.Get(storage.KeyToken)
			require.False(t, ok)

			require.NoError(t, s.Set(storage.KeyToken, "abc"))
			v, ok := s.Get(storage.KeyToken)
			require.True(t, ok)
			require.Equal(t, "abc", v)

			require.NoError(t, s.SetMany(map[string]string{
				storage.KeySubdomain: "acme",
				storage.KeyTenantID:  "7",
			}))
			v, _ = s.Get(storage.KeyTenantID)
			require.Equal(t, "7", v)

			require.NoError(t, s.Remove(storage.KeySubdomain, "missing"))
			_, ok = s.Get(storage.KeySubdomain)
			require.False(t, ok)

			require.NoError(t, s.Clear())
			_, ok = s.Get(storage.KeyToken)
			require.False(t, ok)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	s := storage.NewMemory()

	var out settings
	ok, err := storage.GetJSON(s, storage.KeyDisplaySettings, &out)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, storage.SetJSON(s, storage.KeyDisplaySettings, settings{Theme: "dark"}))
	ok, err = storage.GetJSON(s, storage.KeyDisplaySettings, &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dark", out.Theme)

	require.NoError(t, s.Set(storage.KeyDisplaySettings, "{not json"))
	_, err = storage.GetJSON(s, storage.KeyDisplaySettings, &out)
	require.Error(t, err)
}

func TestFile_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f, err := storage.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetMany(map[string]string{storage.KeySubdomain: "acme", storage.KeyTenantID: "7"}))

	reopened, err := storage.OpenFile(path)
	require.NoError(t, err)
	v, ok := reopened.Get(storage.KeySubdomain)
	require.True(t, ok)
	require.Equal(t, "acme", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	_, err := storage.OpenFile(path)
	require.Error(t, err)
}

func TestFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	f, err := storage.OpenFile(path)
	require.NoError(t, err)
	_, ok := f.Get(storage.KeyToken)
	require.False(t, ok)
}

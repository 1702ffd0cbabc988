package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newSQLiteBacking(t *testing.T, path string) *SQL {
	t.Helper()
	s, err := Connect(Options{Driver: "sqlite", DSN: path, LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func backings(t *testing.T) map[string]Backing {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := ConnectRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	return map[string]Backing{
		"memory": NewMemory(),
		"sqlite": newSQLiteBacking(t, filepath.Join(t.TempDir(), "pos.db")),
		"redis":  r,
	}
}

func TestBacking_Contract(t *testing.T) {
	for name, b := range backings(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get("pos_products")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Put("pos_products", []byte("first")))
			got, err := b.Get("pos_products")
			require.NoError(t, err)
			assert.Equal(t, "first", string(got))

			// overwrite
			require.NoError(t, b.Put("pos_products", []byte("second")))
			got, err = b.Get("pos_products")
			require.NoError(t, err)
			assert.Equal(t, "second", string(got))

			require.NoError(t, b.Put("pos_settings", []byte("s")))
			keys, err := b.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"pos_products", "pos_settings"}, keys)

			require.NoError(t, b.Delete("pos_products"))
			_, err = b.Get("pos_products")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting a missing key is not an error
			require.NoError(t, b.Delete("pos_products"))

			require.NoError(t, b.Clear())
			keys, err = b.Keys()
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestSQL_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.db")

	s1, err := Connect(Options{DSN: path, LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, s1.Put("pos_users", []byte("ciphertext")))
	require.NoError(t, s1.Close())

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("database file was not created")
	}

	s2 := newSQLiteBacking(t, path)
	got, err := s2.Get("pos_users")
	require.NoError(t, err)
	assert.Equal(t, "ciphertext", string(got))
}

func TestConnect_RejectsBadOptions(t *testing.T) {
	_, err := Connect(Options{Driver: "sqlite"})
	assert.Error(t, err)

	_, err = Connect(Options{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Put("k", value))
	value[0] = 'z'

	got, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

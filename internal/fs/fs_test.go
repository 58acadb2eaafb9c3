package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, Default.MkdirAll(dir, 0o755))

	tmp := filepath.Join(dir, ".tmp")
	f, err := Default.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	require.NoError(t, err)
	assert.Equal(t, tmp, f.Name())
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	final := filepath.Join(dir, "blob")
	require.NoError(t, Default.Rename(tmp, final))
	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, Default.Remove(final))
	_, err = os.Stat(final)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS(t *testing.T) {
	dir := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("limited", Fault{FailAfterBytes: 4})
	ffs.AddRule("nosync", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("final", Fault{FailAfterBytes: -1, FailOnRename: true})

	f, err := ffs.OpenFile(filepath.Join(dir, "limited"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = f.Write([]byte("de"))
	assert.ErrorIs(t, err, ErrInjected)
	require.NoError(t, f.Close())

	g, err := ffs.OpenFile(filepath.Join(dir, "nosync"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, g.Sync(), ErrInjected)
	require.NoError(t, g.Close())

	assert.ErrorIs(t, ffs.Rename(filepath.Join(dir, "nosync"), filepath.Join(dir, "final")), ErrInjected)
	require.NoError(t, ffs.Rename(filepath.Join(dir, "nosync"), filepath.Join(dir, "other")))
	assert.Equal(t, []string{filepath.Join(dir, "limited")}, ffs.Leaked())

	require.NoError(t, ffs.Remove(filepath.Join(dir, "limited")))
	assert.Empty(t, ffs.Leaked())
}

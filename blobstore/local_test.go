package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Create a blob
	blobName := "run-001.apt"
	data := []byte("hello world, this is a test blob for voxphase")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(tmpDir, blobName))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. ReadRange
	rangeReader, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	defer rangeReader.Close()

	rangeContent, err := io.ReadAll(rangeReader)
	require.NoError(t, err)
	require.Equal(t, "this", string(rangeContent))

	// 4. Mappable
	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	require.Equal(t, data, all)

	// 5. List
	require.NoError(t, store.Put(ctx, "snapshots/grid-1.bin", []byte("x")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{blobName, "snapshots/grid-1.bin"}, names)

	names, err = store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Equal(t, []string{"snapshots/grid-1.bin"}, names)

	// 6. Delete
	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName))

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"snapshots/grid-1.bin"}, names)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_ReadRange_Boundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "boundary.bin", data))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, _ := io.ReadAll(r)
	r.Close()
	require.True(t, bytes.Equal(data, content))

	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))
	r.Close()

	_, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)
}

func TestLocalBlobStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "b", []byte("bravo")))

	w, err := store.Create(ctx, "a")
	require.NoError(t, err)
	_, err = w.Write([]byte("alpha"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	blob, err := store.Open(ctx, "a")
	require.NoError(t, err)
	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	require.Equal(t, "alpha", string(all))

	buf := make([]byte, 10)
	n, err := blob.ReadAt(ctx, buf, 2)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "pha", string(buf[:n]))

	_, err = blob.ReadRange(ctx, 5, 1)
	require.ErrorIs(t, err, io.EOF)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Open(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}

package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voxphase/blobstore"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	store, err := New(ctx, bucket, WithPrefix(fmt.Sprintf("test-voxphase-%d/", time.Now().UnixNano())))
	require.NoError(t, err)

	data := []byte("voxel container bytes")
	require.NoError(t, store.Put(ctx, "sample.apt", data))
	defer func() { _ = store.Delete(ctx, "sample.apt") }()

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "sample.apt")

	b, err := store.Open(ctx, "sample.apt")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), b.Size())

	all, err := blobstore.ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, data, all)
}

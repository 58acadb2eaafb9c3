package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voxphase"
	"github.com/hupe1980/voxphase/filter"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/grid"
	"github.com/hupe1980/voxphase/pointcloud"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw  string
		want location
	}{
		{"data/run7/phases.vox", location{dir: "data/run7", name: "phases.vox"}},
		{"phases.vox", location{dir: ".", name: "phases.vox"}},
		{"s3://bucket/phases.vox", location{scheme: "s3", bucket: "bucket", name: "phases.vox"}},
		{"s3://bucket/runs/7/grid.vxg", location{scheme: "s3", bucket: "bucket", dir: "runs/7", name: "grid.vxg"}},
		{"minio://localhost:9000/apt/run7/phases.vox", location{scheme: "minio", host: "localhost:9000", bucket: "apt", dir: "run7", name: "phases.vox"}},
	}
	for _, tt := range tests {
		got, err := parseLocation(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	for _, raw := range []string{"s3://bucket", "s3://bucket/dir/", "minio://host/bucket", "gs://bucket/key"} {
		_, err := parseLocation(raw)
		assert.Error(t, err, raw)
	}
}

func TestShells(t *testing.T) {
	rec := shells(4, 0.5, 3)
	require.NoError(t, rec.Validate())
	assert.Equal(t, 64, rec.Len())
	assert.Equal(t, geom.Pt(0.25, 0.25, 0.25), rec.Centers[0])

	seen := map[float32]bool{}
	for _, p := range rec.Phases {
		assert.GreaterOrEqual(t, p, float32(0))
		assert.Less(t, p, float32(3))
		seen[p] = true
	}
	assert.Len(t, seen, 3)
}

func TestPointFormat(t *testing.T) {
	f, err := pointFormat("", "run.pos")
	require.NoError(t, err)
	assert.Equal(t, pointcloud.FormatPOS, f)

	f, err = pointFormat("", "run.bin")
	require.NoError(t, err)
	assert.Equal(t, pointcloud.FormatXYZ, f)

	_, err = pointFormat("las", "run.las")
	assert.Error(t, err)
}

func TestGenAndFilter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, genCmd(ctx, []string{"-out", dir, "-bins", "6", "-points", "3000", "-codec", "zstd", "-format", "pos"}))

	voxPath := filepath.Join(dir, "phases.vox")
	pointsPath := filepath.Join(dir, "points.pos")
	outPath := filepath.Join(dir, "matches.txt")
	require.NoError(t, filterCmd(ctx, []string{
		"-voxels", voxPath, "-points", pointsPath, "-phase", "1", "-workers", "2", "-o", outPath,
	}))

	a := voxphase.New()
	_, err := a.LoadFile(ctx, voxPath, voxphase.LoadConfig{Build: grid.BuildConfig{VoxelSize: geom.Pt(1, 1, 1)}})
	require.NoError(t, err)
	src, err := pointcloud.OpenRawFile(pointsPath, pointcloud.FormatPOS, 0)
	require.NoError(t, err)
	defer src.Close()
	seq, _ := a.Filter(ctx, 1, src)
	want, err := filter.Collect(seq)
	require.NoError(t, err)
	require.NotZero(t, want.GetCardinality())

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, int(want.GetCardinality()))
	for i, v := range want.ToArray() {
		assert.Equal(t, strconv.FormatUint(v, 10), lines[i])
	}

	snapPath := filepath.Join(dir, "grid.vxg")
	require.NoError(t, snapshotCmd(ctx, []string{"-voxels", voxPath, "-out", snapPath, "-codec", "lz4"}))
	snapOut := filepath.Join(dir, "snap-matches.txt")
	require.NoError(t, filterCmd(ctx, []string{
		"-snapshot", snapPath, "-points", pointsPath, "-phase", "1", "-o", snapOut,
	}))
	again, err := os.ReadFile(snapOut)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(raw, again))
}

func TestFilterFlags(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, filterCmd(ctx, []string{"-points", "x.xyz"}))
	assert.Error(t, filterCmd(ctx, []string{"-voxels", "a.vox", "-snapshot", "b.vxg", "-points", "x.xyz"}))
	assert.Error(t, filterCmd(ctx, []string{"-voxels", "a.vox"}))
}

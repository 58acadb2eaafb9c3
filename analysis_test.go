package voxphase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voxphase/blobstore"
	"github.com/hupe1980/voxphase/codec"
	"github.com/hupe1980/voxphase/filter"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/grid"
	"github.com/hupe1980/voxphase/pointcloud"
	"github.com/hupe1980/voxphase/testutil"
	"github.com/hupe1980/voxphase/voxfile"
)

var lattice = testutil.Lattice{
	MinEdge:   geom.Pt(-2, -2, -2),
	VoxelSize: geom.Pt(1, 1, 1),
	Bins:      [3]int{4, 4, 4},
}

func loadConfig() LoadConfig {
	return LoadConfig{Build: grid.BuildConfig{VoxelSize: lattice.VoxelSize}}
}

func centers() []geom.Point3 {
	rec := lattice.DistinctRecords()
	return rec.Centers
}

func TestAnalysis_Lifecycle(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	a := New(WithMetricsCollector(metrics))

	st := a.State()
	assert.False(t, st.Loaded)
	assert.Zero(t, st.Generation)
	assert.Nil(t, st.Grid)
	_, err := a.Stats()
	assert.ErrorIs(t, err, ErrNotLoaded)

	rec := lattice.DistinctRecords()
	st, err = a.LoadRecords(ctx, rec, loadConfig())
	require.NoError(t, err)
	assert.True(t, st.Loaded)
	assert.Equal(t, uint64(1), st.Generation)

	stats, err := a.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(64), stats.Covered)

	st, err = a.LoadRecords(ctx, rec, loadConfig())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), st.Generation)

	_, err = a.LoadRecords(ctx, voxfile.Records{}, loadConfig())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, uint64(2), a.State().Generation)
	assert.True(t, a.State().Loaded)

	st = a.Unload()
	assert.False(t, st.Loaded)
	assert.Equal(t, uint64(3), st.Generation)

	s := metrics.GetStats()
	assert.Equal(t, int64(3), s.LoadCount)
	assert.Equal(t, int64(1), s.LoadErrors)
	assert.Equal(t, int64(128), s.LoadRecords)
}

func TestAnalysis_Load(t *testing.T) {
	ctx := context.Background()
	rec := lattice.DistinctRecords()

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "plain.vox", testutil.ContainerBytes(t, rec)))
	require.NoError(t, store.Put(ctx, "packed.vox", testutil.ContainerBytes(t, rec, voxfile.WithCodec(codec.LZ4{}))))

	for _, name := range []string{"plain.vox", "packed.vox"} {
		a := New()
		st, err := a.Load(ctx, store, name, loadConfig())
		require.NoError(t, err, name)
		assert.Equal(t, name, st.Source)

		for i, c := range rec.Centers {
			phase, err := st.Grid.GetPhase(c)
			require.NoError(t, err)
			assert.Equal(t, rec.Phases[i], phase)
		}
	}

	a := New()
	_, err := a.Load(ctx, store, "missing.vox", loadConfig())
	assert.ErrorIs(t, err, ErrIO)

	_, err = a.Load(ctx, store, "plain.vox", LoadConfig{
		CentersSection: "Centres",
		Build:          loadConfig().Build,
	})
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"Centres"}, fe.Missing)
	assert.False(t, a.State().Loaded)
}

func TestAnalysis_LoadFile(t *testing.T) {
	path := testutil.WriteContainer(t, t.TempDir(), "phases.vox", lattice.DistinctRecords())

	a := New()
	st, err := a.LoadFile(context.Background(), path, loadConfig())
	require.NoError(t, err)
	assert.Equal(t, lattice.Len(), st.Grid.Len())
}

func TestAnalysis_MemoryLimit(t *testing.T) {
	a := New(WithMemoryLimit(16))
	_, err := a.LoadRecords(context.Background(), lattice.DistinctRecords(), loadConfig())
	assert.ErrorIs(t, err, ErrResourceExhausted)
}

func TestAnalysis_Filter(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(42)
	metrics := &BasicMetricsCollector{}
	a := New(WithMetricsCollector(metrics))

	src, err := pointcloud.NewSliceSource(centers(), 5)
	require.NoError(t, err)

	seq, gen := a.Filter(ctx, 1, src)
	assert.Zero(t, gen)
	_, scanned, err := filter.Count(seq)
	require.NoError(t, err)
	assert.Zero(t, scanned)

	rec := rng.PhaseLattice(lattice, 3, 1.0)
	_, err = a.LoadRecords(ctx, rec, loadConfig())
	require.NoError(t, err)

	want := 0
	for _, p := range rec.Phases {
		if p == 2 {
			want++
		}
	}

	seq, gen = a.Filter(ctx, 2, src, filter.WithWorkers(2))
	assert.Equal(t, uint64(1), gen)
	bm, err := filter.Collect(seq)
	require.NoError(t, err)
	assert.Equal(t, uint64(want), bm.GetCardinality())

	outside, err := pointcloud.NewSliceSource([]geom.Point3{geom.Pt(9, 9, 9)}, 1)
	require.NoError(t, err)
	seq, _ = a.Filter(ctx, 2, outside)
	_, _, err = filter.Count(seq)
	var oor *OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.ErrorIs(t, err, ErrOutOfRange)

	s := metrics.GetStats()
	assert.Equal(t, int64(3), s.FilterCount)
	assert.Equal(t, int64(1), s.FilterErrors)
	assert.Equal(t, uint64(len(rec.Phases)), s.FilterScanned)
	assert.Equal(t, uint64(want), s.FilterMatched)
}

func TestAnalysis_FilterKeepsGrid(t *testing.T) {
	ctx := context.Background()
	a := New()
	_, err := a.LoadRecords(ctx, lattice.DistinctRecords(), loadConfig())
	require.NoError(t, err)

	src, err := pointcloud.NewSliceSource(centers(), 8)
	require.NoError(t, err)
	seq, gen := a.Filter(ctx, 1, src)

	a.Unload()

	bm, err := filter.Collect(seq)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, bm.ToArray())
	assert.Less(t, gen, a.State().Generation)
}

func TestAnalysis_Classify(t *testing.T) {
	ctx := context.Background()
	a := New()
	pos := centers()
	masses := make([]float32, len(pos))

	var seen int
	c := ClassifierFunc(func(_ context.Context, positions []geom.Point3, m []float32) (voxfile.Records, error) {
		seen = len(positions)
		rec := voxfile.Records{Centers: positions, Phases: make([]float32, len(positions))}
		for i, p := range positions {
			if p.Z > 0 {
				rec.Phases[i] = 1
			}
		}
		return rec, nil
	})
	st, err := a.Classify(ctx, c, pos, masses, loadConfig())
	require.NoError(t, err)
	assert.Equal(t, len(pos), seen)
	assert.Equal(t, "classifier", st.Source)

	phase, err := st.Grid.GetPhase(geom.Pt(0.5, 0.5, 1.5))
	require.NoError(t, err)
	assert.Equal(t, float32(1), phase)

	_, err = a.Classify(ctx, c, pos, masses[:1], loadConfig())
	assert.ErrorIs(t, err, ErrValidation)

	boom := errors.New("engine unavailable")
	_, err = a.Classify(ctx, ClassifierFunc(func(context.Context, []geom.Point3, []float32) (voxfile.Records, error) {
		return voxfile.Records{}, boom
	}), pos, nil, loadConfig())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(1), a.State().Generation)
}

func TestAnalysis_Snapshot(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rec := lattice.DistinctRecords()

	a := New(WithSnapshotCodec(codec.LZ4{}))
	assert.ErrorIs(t, a.SaveSnapshot(ctx, store, "grid.vxg"), ErrNotLoaded)

	_, err := a.LoadRecords(ctx, rec, loadConfig())
	require.NoError(t, err)
	require.NoError(t, a.SaveSnapshot(ctx, store, "grid.vxg"))

	b := New()
	st, err := b.LoadSnapshot(ctx, store, "grid.vxg")
	require.NoError(t, err)
	assert.Equal(t, a.State().Grid.Bins(), st.Grid.Bins())
	assert.Equal(t, a.State().Grid.Layout(), st.Grid.Layout())

	_, err = b.LoadSnapshot(ctx, store, "missing.vxg")
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, uint64(1), b.State().Generation)
}

func TestAnalysis_ConcurrentLoadAndFilter(t *testing.T) {
	ctx := context.Background()
	a := New()
	rec := lattice.DistinctRecords()
	src, err := pointcloud.NewSliceSource(centers(), 3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := a.LoadRecords(ctx, rec, loadConfig())
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			seq, _ := a.Filter(ctx, 5, src)
			bm, err := filter.Collect(seq)
			assert.NoError(t, err)
			assert.LessOrEqual(t, bm.GetCardinality(), uint64(1))
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(4), a.State().Generation)
}

func TestAnalysis_Logging(t *testing.T) {
	var buf bytes.Buffer
	a := New(WithLogger(NewWriterLogger(&buf, "json", slog.LevelDebug)))
	_, err := a.LoadRecords(context.Background(), lattice.DistinctRecords(), loadConfig())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"grid loaded"`)
	assert.Contains(t, out, `"generation":1`)
	assert.Contains(t, out, `"records":64`)
}

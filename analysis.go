package voxphase

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/voxphase/blobstore"
	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/filter"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/grid"
	"github.com/hupe1980/voxphase/internal/resource"
	"github.com/hupe1980/voxphase/persistence"
	"github.com/hupe1980/voxphase/pointcloud"
	"github.com/hupe1980/voxphase/voxfile"
)

// Default section names of voxel files written by the phase classifier.
const (
	DefaultCentersSection = "Voxel Centers"
	DefaultPhasesSection  = "Phase"
)

// LoadConfig selects the voxel file sections and the grid geometry.
type LoadConfig struct {
	// CentersSection and PhasesSection default to DefaultCentersSection
	// and DefaultPhasesSection.
	CentersSection string
	PhasesSection  string

	Build grid.BuildConfig
}

func (c LoadConfig) withDefaults() LoadConfig {
	if c.CentersSection == "" {
		c.CentersSection = DefaultCentersSection
	}
	if c.PhasesSection == "" {
		c.PhasesSection = DefaultPhasesSection
	}
	return c
}

// State is the lifecycle value of an Analysis. The zero State is Unloaded.
type State struct {
	Loaded bool
	// Generation increases with every successful load and every Unload.
	// Results computed against an older generation are stale.
	Generation uint64
	Grid       *grid.PhaseGrid
	// Source names the voxel file, snapshot or classifier the grid came from.
	Source string
}

// Analysis holds the phase grid of one data set and runs filters against
// it. Loads replace the grid wholesale; filters already running keep the
// grid they started with. It is safe for concurrent use.
type Analysis struct {
	opts options
	rc   *resource.Controller

	mu    sync.Mutex
	state atomic.Pointer[State]
}

// New creates an unloaded Analysis.
func New(optFns ...Option) *Analysis {
	o := applyOptions(optFns)
	a := &Analysis{
		opts: o,
		rc:   resource.NewController(o.resources),
	}
	a.state.Store(&State{})
	return a
}

// State returns the current lifecycle state.
func (a *Analysis) State() State {
	return *a.state.Load()
}

// Stats returns statistics of the loaded grid.
func (a *Analysis) Stats() (grid.Stats, error) {
	st := a.State()
	if !st.Loaded {
		return grid.Stats{}, ErrNotLoaded
	}
	return st.Grid.Stats(), nil
}

// Load parses the voxel file stored under name and installs its grid.
func (a *Analysis) Load(ctx context.Context, store blobstore.BlobStore, name string, cfg LoadConfig) (State, error) {
	start := time.Now()
	b, err := store.Open(ctx, name)
	if err != nil {
		return a.loadFailed(ctx, name, 0, start, errs.NewIOError("open", name, err))
	}
	defer func() { _ = b.Close() }()

	cfg = cfg.withDefaults()
	rec, err := voxfile.Parse(ctx, b, cfg.CentersSection, cfg.PhasesSection, a.parseOptions()...)
	if err != nil {
		return a.loadFailed(ctx, name, 0, start, err)
	}
	return a.build(ctx, name, rec, cfg, start)
}

// LoadFile parses the local voxel file at path and installs its grid.
func (a *Analysis) LoadFile(ctx context.Context, path string, cfg LoadConfig) (State, error) {
	start := time.Now()
	cfg = cfg.withDefaults()
	rec, err := voxfile.ParseFile(ctx, path, cfg.CentersSection, cfg.PhasesSection, a.parseOptions()...)
	if err != nil {
		return a.loadFailed(ctx, path, 0, start, err)
	}
	return a.build(ctx, path, rec, cfg, start)
}

// LoadRecords builds and installs a grid from already parsed records.
func (a *Analysis) LoadRecords(ctx context.Context, rec voxfile.Records, cfg LoadConfig) (State, error) {
	return a.build(ctx, "records", rec, cfg, time.Now())
}

// Classify runs c over the given points and installs the grid built from
// its output. masses may be nil.
func (a *Analysis) Classify(ctx context.Context, c ExternalClassifier, positions []geom.Point3, masses []float32, cfg LoadConfig) (State, error) {
	start := time.Now()
	if masses != nil && len(masses) != len(positions) {
		return a.loadFailed(ctx, "classifier", 0, start,
			errs.Invalid("masses", "%d values for %d positions", len(masses), len(positions)))
	}
	rec, err := c.Classify(ctx, positions, masses)
	if err != nil {
		return a.loadFailed(ctx, "classifier", 0, start, err)
	}
	return a.build(ctx, "classifier", rec, cfg, start)
}

// Unload drops the grid. The generation still advances.
func (a *Analysis) Unload() State {
	return a.install(nil, "")
}

// Filter streams the indices of points in src whose phase equals target,
// against the grid current at the time of the call. It also returns the
// generation of that grid. An unloaded Analysis yields no blocks.
func (a *Analysis) Filter(ctx context.Context, target float32, src pointcloud.Source, opts ...filter.Option) (iter.Seq2[filter.Block, error], uint64) {
	st := a.State()
	seq := filter.Stream(ctx, st.Grid, target, src, opts...)
	log := a.opts.logger.WithGeneration(st.Generation)
	mc := a.opts.metricsCollector

	return func(yield func(filter.Block, error) bool) {
		start := time.Now()
		var (
			scanned, matched uint64
			ferr             error
		)
		defer func() {
			d := time.Since(start)
			mc.RecordFilter(scanned, matched, d, ferr)
			log.LogFilter(ctx, target, matched, scanned, d, ferr)
		}()

		for b, err := range seq {
			if err != nil {
				ferr = translateError(err)
				yield(filter.Block{}, ferr)
				return
			}
			scanned += uint64(b.Count)
			matched += uint64(len(b.Indices))
			if !yield(b, nil) {
				return
			}
		}
	}, st.Generation
}

// SaveSnapshot stores the current grid under name.
func (a *Analysis) SaveSnapshot(ctx context.Context, store blobstore.BlobStore, name string) error {
	st := a.State()
	if !st.Loaded {
		return ErrNotLoaded
	}
	start := time.Now()
	err := persistence.Save(ctx, store, name, st.Grid, a.opts.snapshotCodec)
	a.opts.metricsCollector.RecordSnapshot(time.Since(start), err)
	a.opts.logger.WithGeneration(st.Generation).LogSnapshot(ctx, "saved", name, err)
	return err
}

// LoadSnapshot installs the grid stored under name by SaveSnapshot.
func (a *Analysis) LoadSnapshot(ctx context.Context, store blobstore.BlobStore, name string) (State, error) {
	start := time.Now()
	g, err := persistence.Load(ctx, store, name, a.gridOptions()...)
	if err != nil {
		err = translateError(err)
		a.opts.logger.LogSnapshot(ctx, "load", name, err)
		return a.loadFailed(ctx, name, 0, start, err)
	}
	a.opts.logger.LogSnapshot(ctx, "loaded", name, nil)
	return a.installed(ctx, name, 0, g, start), nil
}

func (a *Analysis) build(ctx context.Context, source string, rec voxfile.Records, cfg LoadConfig, start time.Time) (State, error) {
	g, err := grid.Build(ctx, rec, cfg.Build, a.gridOptions()...)
	if err != nil {
		return a.loadFailed(ctx, source, rec.Len(), start, translateError(err))
	}
	return a.installed(ctx, source, rec.Len(), g, start), nil
}

func (a *Analysis) installed(ctx context.Context, source string, records int, g *grid.PhaseGrid, start time.Time) State {
	st := a.install(g, source)
	d := time.Since(start)
	a.opts.metricsCollector.RecordLoad(records, d, nil)
	a.opts.logger.WithSource(source).WithGeneration(st.Generation).LogLoad(ctx, records, g.Stats(), d, nil)
	return st
}

func (a *Analysis) loadFailed(ctx context.Context, source string, records int, start time.Time, err error) (State, error) {
	a.opts.metricsCollector.RecordLoad(records, time.Since(start), err)
	a.opts.logger.WithSource(source).LogLoad(ctx, records, grid.Stats{}, 0, err)
	return a.State(), err
}

func (a *Analysis) install(g *grid.PhaseGrid, source string) State {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.state.Load()
	next := &State{
		Loaded:     g != nil,
		Generation: prev.Generation + 1,
		Grid:       g,
		Source:     source,
	}
	a.state.Store(next)
	if prev.Grid != nil {
		prev.Grid.Release()
	}
	return *next
}

func (a *Analysis) gridOptions() []grid.Option {
	return []grid.Option{
		grid.WithCoverage(a.opts.coverage),
		grid.WithResourceController(a.rc),
	}
}

func (a *Analysis) parseOptions() []voxfile.Option {
	opts := []voxfile.Option{voxfile.WithResourceController(a.rc)}
	if a.opts.maxDecodedSize > 0 {
		opts = append(opts, voxfile.WithMaxDecodedSize(a.opts.maxDecodedSize))
	}
	return opts
}

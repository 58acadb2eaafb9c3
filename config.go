package voxphase

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/voxphase/codec"
	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/filter"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/grid"
)

// Config is the file form of the analysis settings.
//
//	voxel:
//	  centers_section: Voxel Centers
//	  phases_section: Phase
//	  voxel_size: [0.5, 0.5, 1]
//	  transform: swap_xy
//	filter:
//	  workers: 4
//	  chunk_size: 65536
//	limits:
//	  memory: 2 GiB
//	snapshot:
//	  codec: zstd
//	log:
//	  level: info
//	  format: json
//	  file: /var/log/voxphase.log
type Config struct {
	Voxel    VoxelConfig    `yaml:"voxel"`
	Filter   FilterConfig   `yaml:"filter"`
	Limits   LimitsConfig   `yaml:"limits"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Log      LogConfig      `yaml:"log"`
}

// VoxelConfig selects the voxel file sections and the grid geometry.
type VoxelConfig struct {
	CentersSection string `yaml:"centers_section"`
	PhasesSection  string `yaml:"phases_section"`
	// VoxelSize holds one (cubic) or three edge lengths.
	VoxelSize []float32 `yaml:"voxel_size"`
	MinEdge   []float32 `yaml:"min_edge"`
	Bins      []int     `yaml:"bins"`
	Transform string    `yaml:"transform"`
	Strict    bool      `yaml:"strict"`
	Coverage  *bool     `yaml:"coverage"`
}

// FilterConfig tunes filter streams.
type FilterConfig struct {
	Workers      int     `yaml:"workers"`
	ChunkSize    int     `yaml:"chunk_size"`
	ProgressRate float64 `yaml:"progress_rate"`
}

// LimitsConfig bounds resource usage. Sizes are human readable ("2 GiB").
type LimitsConfig struct {
	Memory string `yaml:"memory"`
	IORate string `yaml:"io_rate"`
}

// SnapshotConfig selects the snapshot compression.
type SnapshotConfig struct {
	Codec string `yaml:"codec"`
}

// LogConfig configures logging. File enables size-based rotation.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Voxel: VoxelConfig{
			CentersSection: DefaultCentersSection,
			PhasesSection:  DefaultPhasesSection,
			VoxelSize:      []float32{1},
		},
		Filter: FilterConfig{
			Workers:      1,
			ProgressRate: float64(filter.DefaultProgressRate),
		},
		Snapshot: SnapshotConfig{Codec: "zstd"},
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			MaxSizeMB: 100,
		},
	}
}

// LoadConfigFile reads a YAML config. Missing keys keep their defaults.
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errs.NewIOError("read", path, err)
	}
	return ParseConfig(raw)
}

// ParseConfig decodes and validates a YAML config.
func ParseConfig(raw []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every field that can be checked without IO.
func (c Config) Validate() error {
	if _, err := c.LoadConfig(); err != nil {
		return err
	}
	if _, err := c.Options(); err != nil {
		return err
	}
	if c.Filter.Workers < 0 || c.Filter.ChunkSize < 0 || c.Filter.ProgressRate < 0 {
		return errs.Invalid("filter", "workers, chunk_size and progress_rate must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errs.Invalid("log.format", "unknown format %q", c.Log.Format)
	}
	return nil
}

// LoadConfig converts the voxel section.
func (c Config) LoadConfig() (LoadConfig, error) {
	v := c.Voxel
	lc := LoadConfig{
		CentersSection: v.CentersSection,
		PhasesSection:  v.PhasesSection,
		Build:          grid.BuildConfig{Strict: v.Strict},
	}

	size, err := vec3("voxel.voxel_size", v.VoxelSize)
	if err != nil {
		return LoadConfig{}, err
	}
	lc.Build.VoxelSize = size

	if len(v.MinEdge) > 0 {
		m, err := vec3("voxel.min_edge", v.MinEdge)
		if err != nil {
			return LoadConfig{}, err
		}
		lc.Build.MinEdge = &m
	}
	switch len(v.Bins) {
	case 0:
	case 3:
		lc.Build.Bins = [3]int(v.Bins)
	default:
		return LoadConfig{}, errs.Invalid("voxel.bins", "want 3 values, got %d", len(v.Bins))
	}

	tr, err := geom.ParseTransform(v.Transform)
	if err != nil {
		return LoadConfig{}, err
	}
	lc.Build.Transform = tr
	return lc, nil
}

// Options converts limits, snapshot and voxel coverage settings.
func (c Config) Options() ([]Option, error) {
	var opts []Option
	if c.Limits.Memory != "" {
		n, err := humanize.ParseBytes(c.Limits.Memory)
		if err != nil {
			return nil, errs.Invalid("limits.memory", "%v", err)
		}
		opts = append(opts, WithMemoryLimit(int64(n)))
	}
	if c.Limits.IORate != "" {
		n, err := humanize.ParseBytes(strings.TrimSuffix(c.Limits.IORate, "/s"))
		if err != nil {
			return nil, errs.Invalid("limits.io_rate", "%v", err)
		}
		opts = append(opts, WithIOLimit(int64(n)))
	}
	if c.Snapshot.Codec != "" {
		cd, ok := codec.ByName(c.Snapshot.Codec)
		if !ok {
			return nil, errs.Invalid("snapshot.codec", "unknown codec %q", c.Snapshot.Codec)
		}
		opts = append(opts, WithSnapshotCodec(cd))
	}
	if c.Voxel.Coverage != nil {
		opts = append(opts, WithCoverage(*c.Voxel.Coverage))
	}
	return opts, nil
}

// FilterOptions converts the filter section.
func (c Config) FilterOptions() []filter.Option {
	opts := []filter.Option{filter.WithWorkers(c.Filter.Workers)}
	if c.Filter.ProgressRate > 0 {
		opts = append(opts, filter.WithProgressRate(rate.Limit(c.Filter.ProgressRate)))
	}
	return opts
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errs.Invalid("log.level", "%v", err)
	}
	return lvl, nil
}

func vec3(field string, v []float32) (geom.Point3, error) {
	switch len(v) {
	case 1:
		return geom.Pt(v[0], v[0], v[0]), nil
	case 3:
		return geom.Pt(v[0], v[1], v[2]), nil
	}
	return geom.Point3{}, errs.Invalid(field, "want 1 or 3 values, got %d", len(v))
}

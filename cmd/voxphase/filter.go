package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"

	"github.com/hupe1980/voxphase"
	"github.com/hupe1980/voxphase/filter"
	"github.com/hupe1980/voxphase/pointcloud"
)

type filterSummary struct {
	Phase      float32 `json:"phase"`
	Generation uint64  `json:"generation"`
	Scanned    uint64  `json:"scanned"`
	Matched    uint64  `json:"matched"`
	Seconds    float64 `json:"seconds"`
}

// filterCmd loads a grid from a voxel file or snapshot and prints the
// indices of the points of -points whose phase is -phase.
func filterCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	var c common
	c.register(fs)
	voxels := fs.String("voxels", "", "voxel file location")
	snapshot := fs.String("snapshot", "", "grid snapshot location (instead of -voxels)")
	points := fs.String("points", "", "local raw point file")
	format := fs.String("format", "", "point file format (xyz, pos); default from extension")
	phase := fs.Float64("phase", 0, "target phase label")
	voxel := fs.Float64("voxel", 0, "voxel edge length (overrides config)")
	workers := fs.Int("workers", 0, "classification workers (overrides config)")
	count := fs.Bool("count", false, "print only the summary")
	out := fs.String("o", "", "write indices to a file instead of stdout")
	asJSON := fs.Bool("json", false, "print the summary as JSON")
	_ = fs.Parse(args)

	if (*voxels == "") == (*snapshot == "") {
		return fmt.Errorf("filter: want exactly one of -voxels and -snapshot")
	}
	if *points == "" {
		return fmt.Errorf("filter: missing -points")
	}

	cfg, err := c.load()
	if err != nil {
		return err
	}
	if *voxel > 0 {
		cfg.Voxel.VoxelSize = []float32{float32(*voxel)}
	}
	if *workers > 0 {
		cfg.Filter.Workers = *workers
	}

	a, logger, closer, err := newAnalysis(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := loadGrid(ctx, a, cfg, *voxels, *snapshot); err != nil {
		return err
	}

	pf, err := pointFormat(*format, *points)
	if err != nil {
		return err
	}
	src, err := pointcloud.OpenRawFile(*points, pf, cfg.Filter.ChunkSize)
	if err != nil {
		return err
	}
	defer src.Close()

	w := io.Discard
	if !*count {
		w = os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
	}
	bw := bufio.NewWriterSize(w, 1<<16)

	opts := append(cfg.FilterOptions(), filter.WithProgress(func(f float64) {
		logger.Info("filter progress", "percent", strconv.FormatFloat(f*100, 'f', 1, 64))
	}))

	start := time.Now()
	seq, gen := a.Filter(ctx, float32(*phase), src, opts...)
	sum := filterSummary{Phase: float32(*phase), Generation: gen}
	var buf []byte
	for block, err := range seq {
		if err != nil {
			return err
		}
		sum.Scanned += uint64(block.Count)
		sum.Matched += uint64(len(block.Indices))
		for _, idx := range block.Indices {
			buf = strconv.AppendUint(buf[:0], idx, 10)
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	sum.Seconds = time.Since(start).Seconds()

	report := os.Stderr
	if *count {
		report = os.Stdout
	}
	if *asJSON {
		return json.NewEncoder(report).Encode(sum)
	}
	fmt.Fprintf(report, "phase %g: %s of %s points matched in %.2fs\n",
		sum.Phase, humanize.Comma(int64(sum.Matched)), humanize.Comma(int64(sum.Scanned)), sum.Seconds)
	return nil
}

func loadGrid(ctx context.Context, a *voxphase.Analysis, cfg voxphase.Config, voxels, snapshot string) error {
	if snapshot != "" {
		store, name, err := resolve(ctx, snapshot)
		if err != nil {
			return err
		}
		_, err = a.LoadSnapshot(ctx, store, name)
		return err
	}

	lc, err := cfg.LoadConfig()
	if err != nil {
		return err
	}
	store, name, err := resolve(ctx, voxels)
	if err != nil {
		return err
	}
	_, err = a.Load(ctx, store, name, lc)
	return err
}

func pointFormat(flagValue, path string) (pointcloud.Format, error) {
	if flagValue != "" {
		return pointcloud.ParseFormat(flagValue)
	}
	switch ext := filepath.Ext(path); ext {
	case ".pos":
		return pointcloud.FormatPOS, nil
	default:
		return pointcloud.FormatXYZ, nil
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"

	"github.com/hupe1980/voxphase/voxfile"
)

type sectionInfo struct {
	Name    string `json:"name"`
	Records int64  `json:"records"`
	Bytes   int64  `json:"bytes"`
	Offset  int64  `json:"offset"`
}

type gridInfo struct {
	Layout      string            `json:"layout"`
	Bins        int               `json:"bins"`
	Covered     uint64            `json:"covered"`
	Collisions  uint64            `json:"collisions"`
	MemoryBytes uint64            `json:"memory_bytes"`
	Phases      map[string]uint64 `json:"phases"`
}

type fileInfo struct {
	Sections []sectionInfo `json:"sections"`
	Grid     *gridInfo     `json:"grid,omitempty"`
}

// infoCmd lists the sections of a voxel file and, unless -sections-only
// is set, builds its grid and prints the grid statistics.
func infoCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	var c common
	c.register(fs)
	voxel := fs.Float64("voxel", 0, "voxel edge length (overrides config)")
	sectionsOnly := fs.Bool("sections-only", false, "do not build the grid")
	asJSON := fs.Bool("json", false, "print JSON")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("info: want one voxel file location")
	}

	cfg, err := c.load()
	if err != nil {
		return err
	}
	if *voxel > 0 {
		cfg.Voxel.VoxelSize = []float32{float32(*voxel)}
	}

	store, name, err := resolve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	b, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	sections, err := voxfile.Sections(ctx, b)
	_ = b.Close()
	if err != nil {
		return err
	}

	var info fileInfo
	for _, s := range sections {
		info.Sections = append(info.Sections, sectionInfo{
			Name:    s.Name,
			Records: s.RecordCount,
			Bytes:   s.DataLength,
			Offset:  s.Offset,
		})
	}

	if !*sectionsOnly {
		a, _, closer, err := newAnalysis(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		lc, err := cfg.LoadConfig()
		if err != nil {
			return err
		}
		if _, err := a.Load(ctx, store, name, lc); err != nil {
			return err
		}
		st, err := a.Stats()
		if err != nil {
			return err
		}
		gi := &gridInfo{
			Layout:      st.Layout.String(),
			Bins:        st.Bins,
			Covered:     st.Covered,
			Collisions:  st.Collisions,
			MemoryBytes: st.MemoryBytes,
			Phases:      make(map[string]uint64, len(st.Phases)),
		}
		for label, n := range st.Phases {
			gi.Phases[fmt.Sprintf("%g", label)] = n
		}
		info.Grid = gi
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tRECORDS\tSIZE\tOFFSET")
	for _, s := range info.Sections {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", s.Name, s.Records, humanize.IBytes(uint64(s.Bytes)), s.Offset)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if g := info.Grid; g != nil {
		fmt.Printf("\n%s\n%d/%d bins covered, %d collisions, %s\n",
			g.Layout, g.Covered, g.Bins, g.Collisions, humanize.IBytes(g.MemoryBytes))
		for _, label := range slices.Sorted(maps.Keys(g.Phases)) {
			fmt.Printf("  phase %s: %s bins\n", label, humanize.Comma(int64(g.Phases[label])))
		}
	}
	return nil
}

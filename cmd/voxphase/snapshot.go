package main

import (
	"context"
	"flag"
	"fmt"
)

// snapshotCmd builds the grid of a voxel file and stores it as a
// compressed snapshot for faster reloads.
func snapshotCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	var c common
	c.register(fs)
	voxels := fs.String("voxels", "", "voxel file location")
	out := fs.String("out", "", "snapshot location")
	voxel := fs.Float64("voxel", 0, "voxel edge length (overrides config)")
	codecName := fs.String("codec", "", "snapshot compression (none, zstd, lz4; overrides config)")
	_ = fs.Parse(args)

	if *voxels == "" || *out == "" {
		return fmt.Errorf("snapshot: want -voxels and -out")
	}
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if *voxel > 0 {
		cfg.Voxel.VoxelSize = []float32{float32(*voxel)}
	}
	if *codecName != "" {
		cfg.Snapshot.Codec = *codecName
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a, _, closer, err := newAnalysis(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := loadGrid(ctx, a, cfg, *voxels, ""); err != nil {
		return err
	}
	store, name, err := resolve(ctx, *out)
	if err != nil {
		return err
	}
	if err := a.SaveSnapshot(ctx, store, name); err != nil {
		return err
	}
	st, err := a.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", *out, st)
	return nil
}

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/hupe1980/voxphase"
	"github.com/hupe1980/voxphase/codec"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/pointcloud"
	"github.com/hupe1980/voxphase/voxfile"
)

// genCmd writes a lattice of voxels labeled by concentric shells around
// the lattice center, and uniformly scattered points inside it.
func genCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	out := fs.String("out", ".", "output directory")
	bins := fs.Int("bins", 32, "voxels per axis")
	size := fs.Float64("voxel", 1, "voxel edge length")
	phases := fs.Int("phases", 4, "number of phases")
	points := fs.Int("points", 1_000_000, "number of points")
	format := fs.String("format", "xyz", "point file format (xyz, pos)")
	codecName := fs.String("codec", "none", "voxel file compression (none, zstd, lz4)")
	seed := fs.Uint64("seed", 1, "random seed")
	_ = fs.Parse(args)

	if *bins < 1 || *size <= 0 || *phases < 1 || *points < 0 {
		return fmt.Errorf("gen: bins, voxel and phases must be positive")
	}
	cd, ok := codec.ByName(*codecName)
	if !ok {
		return fmt.Errorf("gen: unknown codec %q", *codecName)
	}
	pf, err := pointcloud.ParseFormat(*format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rec := shells(*bins, float32(*size), *phases)
	var vox bytes.Buffer
	if err := voxfile.WriteRecords(&vox, voxphase.DefaultCentersSection, voxphase.DefaultPhasesSection, rec, voxfile.WithCodec(cd)); err != nil {
		return err
	}
	voxPath := filepath.Join(*out, "phases.vox")
	if err := os.WriteFile(voxPath, vox.Bytes(), 0o644); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	extent := float32(*bins) * float32(*size)
	last := math.Nextafter32(extent, 0)
	coord := func() float32 { return min(rng.Float32()*extent, last) }
	pos := make([]geom.Point3, *points)
	mass := make([]float32, *points)
	for i := range pos {
		pos[i] = geom.Pt(coord(), coord(), coord())
		mass[i] = rng.Float32() * 100
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var raw bytes.Buffer
	if err := pointcloud.WriteRaw(&raw, pf, pos, mass); err != nil {
		return err
	}
	pointsPath := filepath.Join(*out, "points."+pf.String())
	if err := os.WriteFile(pointsPath, raw.Bytes(), 0o644); err != nil {
		return err
	}

	fmt.Printf("%s: %d voxels, %s\n", voxPath, rec.Len(), humanize.IBytes(uint64(vox.Len())))
	fmt.Printf("%s: %d points, %s\n", pointsPath, len(pos), humanize.IBytes(uint64(raw.Len())))
	return nil
}

// shells labels each voxel of an n^3 lattice starting at the origin by its
// distance from the lattice center, in phases equal-width bands.
func shells(n int, size float32, phases int) voxfile.Records {
	rec := voxfile.Records{
		Centers: make([]geom.Point3, 0, n*n*n),
		Phases:  make([]float32, 0, n*n*n),
	}
	half := float64(n) * float64(size) / 2
	maxR := half * math.Sqrt(3)
	for z := range n {
		for y := range n {
			for x := range n {
				c := geom.Pt((float32(x)+0.5)*size, (float32(y)+0.5)*size, (float32(z)+0.5)*size)
				dx, dy, dz := float64(c.X)-half, float64(c.Y)-half, float64(c.Z)-half
				band := int(math.Sqrt(dx*dx+dy*dy+dz*dz) / maxR * float64(phases))
				rec.Centers = append(rec.Centers, c)
				rec.Phases = append(rec.Phases, float32(min(band, phases-1)))
			}
		}
	}
	return rec
}

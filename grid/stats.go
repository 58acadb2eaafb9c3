package grid

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats summarizes a grid.
type Stats struct {
	Layout      Layout
	Bins        int
	Covered     uint64
	Writes      uint64
	Collisions  uint64
	MemoryBytes uint64

	// Phases counts covered bins per label.
	Phases map[float32]uint64
}

// Stats computes summary statistics. Without a coverage bitmap every bin
// counts as covered.
func (g *PhaseGrid) Stats() Stats {
	s := Stats{
		Layout:      g.layout,
		Bins:        len(g.bins),
		Writes:      g.writes,
		MemoryBytes: uint64(len(g.bins)) * 4,
		Phases:      make(map[float32]uint64),
	}

	if g.covered == nil {
		s.Covered = uint64(len(g.bins))
		for _, v := range g.bins {
			s.Phases[v]++
		}
	} else {
		s.Covered = g.covered.GetCardinality()
		s.MemoryBytes += g.covered.GetSizeInBytes()
		it := g.covered.Iterator()
		for it.HasNext() {
			s.Phases[g.bins[it.Next()]]++
		}
	}
	if g.covered != nil && s.Writes > s.Covered {
		s.Collisions = s.Writes - s.Covered
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("%s: %d/%d bins covered, %d collisions, %d phases, %s",
		s.Layout, s.Covered, s.Bins, s.Collisions, len(s.Phases), humanize.IBytes(s.MemoryBytes))
}

package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/voxphase/voxfile"
)

// Section names used by the fixtures.
const (
	CentersSection = "Voxel Centers"
	PhasesSection  = "Phase"
)

// ContainerBytes encodes rec as a voxel container. Decoy sections are
// written before and between the requested ones.
func ContainerBytes(t testing.TB, rec voxfile.Records, opts ...voxfile.WriterOption) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := voxfile.NewWriter(&buf, opts...)
	if err != nil {
		t.Fatalf("voxfile writer: %v", err)
	}
	steps := []func() error{
		func() error { return w.WriteFloats("Mass", []float32{1, 2, 3}) },
		func() error { return w.WritePoints(CentersSection, rec.Centers) },
		func() error { return w.WriteSection("Ion Type", 4, []byte{0, 1, 2, 3}) },
		func() error { return w.WriteFloats(PhasesSection, rec.Phases) },
		w.Close,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("voxfile write: %v", err)
		}
	}
	return buf.Bytes()
}

// WriteContainer writes rec as a container file dir/name and returns its
// path.
func WriteContainer(t testing.TB, dir, name string, rec voxfile.Records, opts ...voxfile.WriterOption) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, ContainerBytes(t, rec, opts...), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

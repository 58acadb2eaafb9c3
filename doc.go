// Package voxphase classifies the points of a large 3D point cloud into
// phases and streams the indices of the points that belong to a selected
// phase.
//
// A phase assignment arrives as a voxel file: a chunked binary container
// with a section of voxel centers and a parallel section of phase labels.
// The centers are binned into a dense PhaseGrid once; afterwards every
// point is classified by an O(1) lookup.
//
// # Quick Start
//
//	ctx := context.Background()
//	a := voxphase.New(voxphase.WithLogger(voxphase.NewTextLogger(slog.LevelInfo)))
//
//	_, err := a.LoadFile(ctx, "phases.vox", voxphase.LoadConfig{
//	    Build: grid.BuildConfig{VoxelSize: geom.Pt(1, 1, 1)},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	points, _ := pointcloud.OpenRawFile("run.pos", pointcloud.FormatPOS, 0)
//	defer points.Close()
//
//	seq, gen := a.Filter(ctx, 2, points, filter.WithWorkers(4))
//	for block, err := range seq {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    use(gen, block.Indices)
//	}
//
// # Lifecycle
//
// An Analysis is Unloaded until a load succeeds. Every load (voxel file,
// records, ExternalClassifier output or snapshot) replaces the grid
// atomically and advances the generation; callers caching filter results
// compare generations instead of subscribing to change events.
//
// # Remote Storage
//
// Voxel files and grid snapshots are read through blobstore.BlobStore, so
// the same calls work against local disk, memory, S3 (blobstore/s3) and
// MinIO (blobstore/minio). Remote voxel files are read with ranged
// requests: sections that are not requested are never downloaded.
package voxphase

// Package minio provides a BlobStore backed by the MinIO client.
//
// It works against MinIO and other S3-compatible object stores (Ceph,
// SeaweedFS, Garage) without pulling in the AWS SDK.
//
//	store, err := minio.Dial(ctx, "localhost:9000", "minioadmin", "minioadmin", false, "runs", "2026/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a := voxphase.New()
//	err = a.Load(ctx, store, "sample.apt", voxphase.LoadConfig{VoxelSize: 1})
package minio

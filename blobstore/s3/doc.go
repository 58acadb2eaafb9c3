// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("runs/2024-06/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	a := voxphase.New()
//	err = a.Load(ctx, store, "R5076_12345.apt", cfg)
//
// # Features
//
//   - Range reads, so a voxel container can be parsed without downloading it first
//   - Multipart uploads for large grid snapshots
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3

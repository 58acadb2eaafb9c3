// Package blobstore provides storage abstraction for voxel containers and
// grid snapshots.
//
// BlobStore is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads are memory mapped
//   - MemoryStore: in-process map, for tests and short-lived snapshots
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Blobs read from a LocalStore or MemoryStore implement Mappable, which lets
// the voxel parser work on the bytes in place. Remote blobs are read with
// ranged requests.
package blobstore

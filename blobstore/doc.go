// Package blobstore provides storage for index snapshots.
//
// A snapshot is written once under a name and read back as a whole, so the
// interface only needs streaming writes, atomic puts and ranged reads.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local directory, reads through mmap
//   - MemoryStore: in-process map, for tests and caching layers
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 with multipart uploads
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Stream a new blob
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can stream a byte range in one request should also implement
// RangeReader; NewReader then uses it instead of many small ReadAt calls.
package blobstore

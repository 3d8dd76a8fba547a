// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("snapshots/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = ix.SaveBlob(ctx, store, "reads.sdci")
//
// # Features
//
//   - Single ranged GET for snapshot loads
//   - Multipart streaming uploads for large snapshots
//   - CRC32C integrity checksums on every upload
//   - Automatic pagination for listing
//   - Custom endpoints for S3-compatible services
package s3

// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is a high-performance, S3-compatible object storage system. This package
// uses the official MinIO Go client library for compatibility with MinIO and
// other S3-compatible storage systems like Ceph, SeaweedFS, and Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "snapshots/")
//	err = ix.SaveBlob(ctx, store, "genome.sdci", sdci.WithCompression(persistence.CompressionZstd))
//
// # Features
//
//   - Streaming uploads, so a snapshot is never buffered whole
//   - Whole-object ranged reads for loading
//   - Works with any S3-compatible storage (Ceph, Garage, SeaweedFS)
package minio

package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/sdci"
	"github.com/hupe1980/sdci/blobstore"
	minioblob "github.com/hupe1980/sdci/blobstore/minio"
	s3blob "github.com/hupe1980/sdci/blobstore/s3"
	"github.com/hupe1980/sdci/persistence"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// snapshotTarget saves and loads one named snapshot.
type snapshotTarget struct {
	name        string
	store       blobstore.BlobStore // nil means a plain file
	compression persistence.Compression
}

func openTarget(ctx context.Context, cfg Config, name string) (*snapshotTarget, error) {
	if name == "" {
		return nil, fmt.Errorf("no index given (use --index)")
	}

	c, err := persistence.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	return &snapshotTarget{name: name, store: store, compression: c}, nil
}

// openStore connects to the configured backend. The file backend has no
// store and returns nil.
func openStore(ctx context.Context, sc StorageConfig) (blobstore.BlobStore, error) {
	switch sc.Backend {
	case "", "file":
		return nil, nil
	case "local":
		return blobstore.NewLocalStore(sc.Root), nil
	case "minio":
		client, err := minio.New(sc.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
			Secure: sc.Secure,
			Region: sc.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minioblob.NewStore(client, sc.Bucket, sc.Prefix), nil
	case "s3":
		opts := []s3blob.Option{s3blob.WithPrefix(sc.Prefix)}
		if sc.Region != "" {
			opts = append(opts, s3blob.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3blob.WithEndpoint(sc.Endpoint))
		}
		store, err := s3blob.New(ctx, sc.Bucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}

func (t *snapshotTarget) save(ctx context.Context, ix *sdci.Index) error {
	if t.store == nil {
		return ix.SaveFile(t.name, sdci.WithCompression(t.compression))
	}
	return ix.SaveBlob(ctx, t.store, t.name, sdci.WithCompression(t.compression))
}

func (t *snapshotTarget) load(ctx context.Context, ix *sdci.Index) error {
	if t.store == nil {
		return ix.LoadFile(t.name)
	}
	return ix.LoadBlob(ctx, t.store, t.name)
}

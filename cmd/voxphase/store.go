package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hupe1980/voxphase/blobstore"
	"github.com/hupe1980/voxphase/blobstore/minio"
	"github.com/hupe1980/voxphase/blobstore/s3"
)

// location is a parsed blob address.
type location struct {
	scheme string // "", "s3" or "minio"
	host   string // minio endpoint
	bucket string
	dir    string // local directory or key prefix
	name   string
}

func parseLocation(raw string) (location, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return location{dir: filepath.Dir(raw), name: filepath.Base(raw)}, nil
	}

	var loc location
	loc.scheme = scheme
	parts := strings.Split(rest, "/")
	switch scheme {
	case "s3":
		if len(parts) < 2 {
			return loc, fmt.Errorf("%s: want s3://bucket/key", raw)
		}
		loc.bucket, parts = parts[0], parts[1:]
	case "minio":
		if len(parts) < 3 {
			return loc, fmt.Errorf("%s: want minio://host/bucket/key", raw)
		}
		loc.host, loc.bucket, parts = parts[0], parts[1], parts[2:]
	default:
		return loc, fmt.Errorf("%s: unsupported scheme %q", raw, scheme)
	}

	key := strings.Join(parts, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return loc, fmt.Errorf("%s: missing object key", raw)
	}
	loc.dir, loc.name = path.Split(key)
	loc.dir = strings.TrimSuffix(loc.dir, "/")
	return loc, nil
}

// openStore connects to the store holding loc. S3 uses the default AWS
// credential chain; MinIO reads MINIO_ACCESS_KEY, MINIO_SECRET_KEY and
// MINIO_SECURE.
func openStore(ctx context.Context, loc location) (blobstore.BlobStore, error) {
	switch loc.scheme {
	case "s3":
		var opts []func(*s3.Options)
		if loc.dir != "" {
			opts = append(opts, s3.WithPrefix(loc.dir))
		}
		if region := os.Getenv("AWS_REGION"); region != "" {
			opts = append(opts, s3.WithRegion(region))
		}
		if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
			opts = append(opts, s3.WithEndpoint(endpoint, true))
		}
		return s3.New(ctx, loc.bucket, opts...)
	case "minio":
		return minio.Dial(ctx, loc.host,
			os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"),
			os.Getenv("MINIO_SECURE") == "true",
			loc.bucket, loc.dir)
	default:
		return blobstore.NewLocalStore(loc.dir), nil
	}
}

// resolve parses raw and opens its store.
func resolve(ctx context.Context, raw string) (blobstore.BlobStore, string, error) {
	loc, err := parseLocation(raw)
	if err != nil {
		return nil, "", err
	}
	store, err := openStore(ctx, loc)
	if err != nil {
		return nil, "", err
	}
	return store, loc.name, nil
}

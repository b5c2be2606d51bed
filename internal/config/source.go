package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/discochess/hotpath/internal/codec"
	"github.com/discochess/hotpath/internal/dataset"
	"github.com/discochess/hotpath/internal/source"
	"github.com/discochess/hotpath/internal/source/disksource"
	"github.com/discochess/hotpath/internal/source/gcssource"
	"github.com/discochess/hotpath/internal/source/s3source"
)

// OpenSource resolves Dataset to a word list source:
//   - s3://bucket/key and gs://bucket/key name a single object
//   - a directory is read through its manifest.json
//   - anything else is a word list file
func (c Config) OpenSource(ctx context.Context) (source.Source, error) {
	cd, err := codec.ByName(c.Codec)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(c.Dataset, "s3://"):
		bucket, key, err := splitObjectURL(c.Dataset, "s3://")
		if err != nil {
			return nil, err
		}
		opts := []s3source.Option{
			s3source.WithRegion(c.S3Region),
			s3source.WithEndpoint(c.S3Endpoint),
		}
		if cd != nil {
			opts = append(opts, s3source.WithCodec(cd))
		}
		return s3source.New(ctx, bucket, key, opts...)

	case strings.HasPrefix(c.Dataset, "gs://"):
		bucket, key, err := splitObjectURL(c.Dataset, "gs://")
		if err != nil {
			return nil, err
		}
		var opts []gcssource.Option
		if cd != nil {
			opts = append(opts, gcssource.WithCodec(cd))
		}
		return gcssource.New(ctx, bucket, key, opts...)
	}

	path := c.Dataset
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		m, err := dataset.ReadManifest(path)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(path, m.File)
	}

	var opts []disksource.Option
	if cd != nil {
		opts = append(opts, disksource.WithCodec(cd))
	}
	return disksource.New(path, opts...), nil
}

func splitObjectURL(url, scheme string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(url, scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid object URL %q: want %sbucket/key", url, scheme)
	}
	return bucket, key, nil
}

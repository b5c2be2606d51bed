// Package gcssource reads a word list from a Google Cloud Storage object.
package gcssource

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/discochess/hotpath/internal/codec"
	"github.com/discochess/hotpath/internal/source"
)

var (
	_ source.Source = (*Source)(nil)
	_ source.Stater = (*Source)(nil)
)

// Source is a GCS-backed word list.
type Source struct {
	client *storage.Client
	object *storage.ObjectHandle
	bucket string
	key    string
	codec  codec.Codec

	clientOpts []option.ClientOption
}

// Option configures a Source.
type Option func(*Source)

// WithCodec overrides the codec picked from the object name suffix.
func WithCodec(c codec.Codec) Option {
	return func(s *Source) {
		s.codec = c
	}
}

// WithClientOptions passes options through to storage.NewClient, e.g.
// option.WithEndpoint for an emulator or option.WithoutAuthentication
// for public buckets.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *Source) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// New creates a GCS source for bucket/key.
// The bucket must already exist.
func New(ctx context.Context, bucket, key string, opts ...Option) (*Source, error) {
	s := &Source{
		bucket: bucket,
		key:    key,
		codec:  codec.ForPath(key),
	}
	for _, opt := range opts {
		opt(s)
	}

	client, err := storage.NewClient(ctx, s.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	s.client = client
	s.object = client.Bucket(bucket).Object(key)

	return s, nil
}

// Open streams the object through the codec's decompressor.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	reader, err := s.object.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, source.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}

	rc, err := source.Wrap(s.codec, reader)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return rc, nil
}

// Stat reads the object attributes.
func (s *Source) Stat(ctx context.Context) (source.Info, error) {
	attrs, err := s.object.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return source.Info{}, source.ErrNotFound
		}
		return source.Info{}, fmt.Errorf("reading attributes: %w", err)
	}
	return source.Info{Size: attrs.Size, Modified: attrs.Updated}, nil
}

// Name returns the gs:// URL of the object.
func (s *Source) Name() string {
	return "gs://" + s.bucket + "/" + s.key
}

// Close releases the GCS client.
func (s *Source) Close() error {
	return s.client.Close()
}

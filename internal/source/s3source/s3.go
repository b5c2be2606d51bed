// Package s3source reads a word list from an AWS S3 object, or from any
// S3-compatible store such as MinIO.
package s3source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/hotpath/internal/codec"
	"github.com/discochess/hotpath/internal/source"
)

var (
	_ source.Source = (*Source)(nil)
	_ source.Stater = (*Source)(nil)
)

// objectAPI is the part of *s3.Client the source calls.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Source is an S3-backed word list.
type Source struct {
	client objectAPI
	bucket string
	key    string
	codec  codec.Codec
}

type settings struct {
	region   string
	endpoint string
	client   *s3.Client
	codec    codec.Codec
	override bool
}

// Option configures a Source.
type Option func(*settings)

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *settings) { s.region = region }
}

// WithEndpoint sets a custom endpoint and enables path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) { s.endpoint = endpoint }
}

// WithCodec overrides the codec picked from the key suffix. Without a
// recognised suffix the codec is detected from the object content.
func WithCodec(c codec.Codec) Option {
	return func(s *settings) {
		s.codec = c
		s.override = true
	}
}

// WithClient uses an existing S3 client instead of loading AWS config.
// WithRegion and WithEndpoint are then ignored.
func WithClient(client *s3.Client) Option {
	return func(s *settings) { s.client = client }
}

// New creates a source for bucket/key. Nothing is fetched until Open.
func New(ctx context.Context, bucket, key string, opts ...Option) (*Source, error) {
	var set settings
	for _, opt := range opts {
		opt(&set)
	}

	src := &Source{bucket: bucket, key: key, codec: codec.ForPath(key)}
	if set.override {
		src.codec = set.codec
	}

	if set.client != nil {
		src.client = set.client
		return src, nil
	}
	client, err := newClient(ctx, set.region, set.endpoint)
	if err != nil {
		return nil, err
	}
	src.client = client
	return src, nil
}

func newClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Open streams the object through the codec's decompressor.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, notFound(err, "reading word list")
	}

	rc, err := source.Wrap(s.codec, out.Body)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return rc, nil
}

// Stat issues a HEAD request for the object.
func (s *Source) Stat(ctx context.Context) (source.Info, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return source.Info{}, notFound(err, "reading object metadata")
	}
	return source.Info{
		Size:     aws.ToInt64(out.ContentLength),
		Modified: aws.ToTime(out.LastModified),
	}, nil
}

// notFound maps S3's missing-object errors to source.ErrNotFound. HEAD
// responses carry no body, so they surface as NotFound rather than
// NoSuchKey.
func notFound(err error, op string) error {
	var (
		nsk *types.NoSuchKey
		nf  *types.NotFound
	)
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return source.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Name returns the s3:// URL of the object.
func (s *Source) Name() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Close is a no-op; the S3 client holds no resources that need releasing.
func (s *Source) Close() error {
	return nil
}

package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ErrInvalidGCSPath is returned for publish targets that are not gs:// URLs.
var ErrInvalidGCSPath = errors.New("dataset: invalid GCS path")

// Publisher copies a built data directory to a Google Cloud Storage prefix.
type Publisher struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	logger *zap.Logger
}

// PublishOption configures a Publisher.
type PublishOption func(*publishConfig)

type publishConfig struct {
	clientOpts []option.ClientOption
	logger     *zap.Logger
}

// WithPublishClientOptions passes options through to storage.NewClient.
func WithPublishClientOptions(opts ...option.ClientOption) PublishOption {
	return func(c *publishConfig) { c.clientOpts = append(c.clientOpts, opts...) }
}

// WithPublishLogger sets the logger for non-fatal publish problems.
func WithPublishLogger(l *zap.Logger) PublishOption {
	return func(c *publishConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewPublisher connects to the bucket named by target, "gs://bucket/prefix".
func NewPublisher(ctx context.Context, target string, opts ...PublishOption) (*Publisher, error) {
	bucket, prefix, err := ParseGCSPath(target)
	if err != nil {
		return nil, err
	}
	cfg := publishConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := storage.NewClient(ctx, cfg.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return &Publisher{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: prefix,
		logger: cfg.logger,
	}, nil
}

// ParseGCSPath splits "gs://bucket/prefix" into bucket and prefix. A
// non-empty prefix always ends in "/".
func ParseGCSPath(target string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(target, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w %q: must start with gs://", ErrInvalidGCSPath, target)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w %q: missing bucket name", ErrInvalidGCSPath, target)
	}
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		prefix += "/"
	}
	return bucket, prefix, nil
}

// Publish uploads the word list named by the manifest in dir, then the
// manifest, then deletes word lists left by earlier builds. Readers that
// follow the manifest never see a missing file.
func (p *Publisher) Publish(ctx context.Context, dir string, progress ProgressFunc) error {
	m, err := ReadManifest(dir)
	if err != nil {
		return err
	}

	if err := p.putWordList(ctx, filepath.Join(dir, m.File), m, progress); err != nil {
		return fmt.Errorf("uploading %s: %w", m.File, err)
	}
	if err := p.PutManifest(ctx, m); err != nil {
		return fmt.Errorf("uploading manifest: %w", err)
	}

	removed, err := p.removeStale(ctx, m.File)
	if err != nil {
		p.logger.Warn("stale word lists left in bucket", zap.String("prefix", p.prefix), zap.Error(err))
	}
	p.logger.Info("published word list",
		zap.String("object", p.prefix+m.File),
		zap.Int64("words", m.WordCount),
		zap.Int("stale_removed", removed),
	)
	return nil
}

// removeStale deletes word lists under the prefix other than current and
// reports how many it removed.
func (p *Publisher) removeStale(ctx context.Context, current string) (int, error) {
	it := p.bucket.Objects(ctx, &storage.Query{Prefix: p.prefix + BaseName})
	removed := 0
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return removed, nil
		}
		if err != nil {
			return removed, fmt.Errorf("listing objects: %w", err)
		}
		if attrs.Name == p.prefix+current {
			continue
		}
		if err := p.bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return removed, fmt.Errorf("deleting %s: %w", attrs.Name, err)
		}
		removed++
	}
}

func (p *Publisher) putWordList(ctx context.Context, path string, m *Manifest, progress ProgressFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := p.bucket.Object(p.prefix + m.File).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"
	if m.Compression != "" && m.Compression != "none" {
		w.ContentType = "application/octet-stream"
	}
	w.Metadata = map[string]string{
		"compression":  m.Compression,
		"word_count":   strconv.FormatInt(m.WordCount, 10),
		"unique_words": strconv.FormatInt(m.UniqueWords, 10),
	}
	if progress != nil {
		w.ProgressFunc = func(n int64) {
			progress(Progress{Phase: PhaseUpload, Bytes: n, Total: m.Bytes})
		}
	}

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// PutManifest uploads just the manifest.
func (p *Publisher) PutManifest(ctx context.Context, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	w := p.bucket.Object(p.prefix + ManifestFilename).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Close releases the storage client.
func (p *Publisher) Close() error {
	return p.client.Close()
}

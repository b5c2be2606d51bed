// Package disksource implements a word list stored on the local filesystem.
package disksource

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/discochess/hotpath/internal/codec"
	"github.com/discochess/hotpath/internal/source"
)

var (
	_ source.Source = (*Source)(nil)
	_ source.Stater = (*Source)(nil)
)

// Source reads a word list from a file.
type Source struct {
	path  string
	codec codec.Codec
}

// Option configures a Source.
type Option func(*Source)

// WithCodec overrides the codec picked from the file suffix. Without a
// recognised suffix the codec is detected from the file content.
func WithCodec(c codec.Codec) Option {
	return func(s *Source) {
		s.codec = c
	}
}

// New creates a disk source for the file at path. The file is not opened
// until Open is called, so a missing file surfaces on first use.
func New(path string, opts ...Option) *Source {
	s := &Source{
		path:  path,
		codec: codec.ForPath(path),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the file and wraps it with the codec's decompressor.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, source.ErrNotFound
		}
		return nil, fmt.Errorf("opening word list: %w", err)
	}

	rc, err := source.Wrap(s.codec, f)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return rc, nil
}

// Stat reports the size and modification time of the file.
func (s *Source) Stat(ctx context.Context) (source.Info, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return source.Info{}, source.ErrNotFound
		}
		return source.Info{}, err
	}
	return source.Info{Size: fi.Size(), Modified: fi.ModTime()}, nil
}

// Name returns "disk:" followed by the file path.
func (s *Source) Name() string {
	return "disk:" + s.path
}

// Path returns the file path.
func (s *Source) Path() string {
	return s.path
}

// Close is a no-op; files are closed by the readers returned from Open.
func (s *Source) Close() error {
	return nil
}

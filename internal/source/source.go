// Package source defines where word lists are read from.
//
// A Source hands out a fresh decompressed stream on every Open. The
// linear-scan strategy opens once per request; the cached strategy
// opens once at construction.
package source

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/discochess/hotpath/internal/codec"
)

var (
	// ErrNotFound is returned when the word list does not exist in the source.
	ErrNotFound = errors.New("source: word list not found")

	// ErrUnsupported is returned by Stat for sources that cannot describe
	// the stored list.
	ErrUnsupported = errors.New("source: operation not supported")
)

// Source defines the interface for word list backends.
type Source interface {
	// Open returns a reader over the decompressed word list, one word
	// per line. The caller must close it.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Name describes the source for logs, e.g. "disk:/data/words.txt".
	Name() string

	// Close releases any resources held by the source.
	Close() error
}

// Info describes the stored word list, before decompression.
type Info struct {
	Size     int64
	Modified time.Time
}

// Stater is implemented by sources that can describe the stored list
// without reading it.
type Stater interface {
	Stat(ctx context.Context) (Info, error)
}

// Stat returns src's Info, or ErrUnsupported when src is not a Stater.
func Stat(ctx context.Context, src Source) (Info, error) {
	if s, ok := src.(Stater); ok {
		return s.Stat(ctx)
	}
	return Info{}, ErrUnsupported
}

// ReadCloser couples a decompressing reader with the underlying stream so
// that Close releases both.
type ReadCloser struct {
	io.Reader
	closers []io.Closer
}

// Wrap returns a reader over c's decompression of raw. A nil c is
// detected from the leading bytes of raw. Closing the result closes the
// decompressor and then raw.
func Wrap(c codec.Codec, raw io.ReadCloser) (io.ReadCloser, error) {
	var r io.Reader = raw
	if c == nil {
		var err error
		if c, r, err = codec.Detect(raw); err != nil {
			raw.Close()
			return nil, err
		}
	}
	dec, err := c.NewReader(r)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return &ReadCloser{Reader: dec, closers: []io.Closer{dec, raw}}, nil
}

// Close closes every wrapped stream and returns the first error.
func (r *ReadCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

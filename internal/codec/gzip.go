package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

type gzipCodec struct{}

func (gzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (gzipCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, gzip.BestCompression)
}

func (gzipCodec) Suffix() string { return ".gz" }
func (gzipCodec) Name() string   { return "gzip" }
func (gzipCodec) magic() []byte  { return []byte{0x1f, 0x8b} }

type plainCodec struct{}

// NewReader never closes r; the caller keeps ownership.
func (plainCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func (plainCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (plainCodec) Suffix() string { return "" }
func (plainCodec) Name() string   { return "none" }
func (plainCodec) magic() []byte  { return nil }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

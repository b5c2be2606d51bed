package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

type zstdCodec struct {
	level zstd.EncoderLevel
}

// NewZstd returns a zstd codec encoding at level; zero means the default
// level. Lists are built once and read on every scan, so builds may trade
// encode time for size.
func NewZstd(level zstd.EncoderLevel) Codec {
	if level == 0 {
		level = zstd.SpeedDefault
	}
	return zstdCodec{level: level}
}

// A single decoder goroutine keeps per-request scans cheap to set up.
func (c zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

func (c zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(c.level))
}

func (zstdCodec) Suffix() string { return ".zst" }
func (zstdCodec) Name() string   { return "zstd" }
func (zstdCodec) magic() []byte  { return []byte{0x28, 0xb5, 0x2f, 0xfd} }

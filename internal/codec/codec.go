// Package codec compresses and decompresses word list files.
//
// A codec is picked by name (build flags, config), by file suffix (local
// paths, object keys) or by sniffing the leading bytes of a stream.
package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrUnknown is returned by ByName for names no codec answers to.
var ErrUnknown = errors.New("codec: unknown codec")

// Codec compresses and decompresses one word list format.
type Codec interface {
	// NewReader decompresses data read from r.
	NewReader(r io.Reader) (io.ReadCloser, error)
	// NewWriter compresses data written to w. Close flushes but does not
	// close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// Suffix is the file name suffix including the dot, "" for plain text.
	Suffix() string
	// Name identifies the codec in manifests, flags and logs.
	Name() string

	magic() []byte
}

var (
	// Zstd compresses at the default encoder level.
	Zstd Codec = NewZstd(0)
	// Gzip compresses at best compression.
	Gzip Codec = gzipCodec{}
	// Plain stores the list uncompressed.
	Plain Codec = plainCodec{}
)

var known = []Codec{Zstd, Gzip, Plain}

// Names lists the accepted codec names.
func Names() []string {
	names := make([]string, len(known))
	for i, c := range known {
		names[i] = c.Name()
	}
	return names
}

// ByName returns the codec called name. "auto" and "" return nil, which
// callers treat as "pick from the suffix or the content".
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return nil, nil
	case "zstd", "zst":
		return Zstd, nil
	case "gzip", "gz":
		return Gzip, nil
	case "none", "plain":
		return Plain, nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknown, name, strings.Join(Names(), ", "))
}

// ForPath picks a codec from the suffix of p, or nil if the suffix names
// no compression.
func ForPath(p string) Codec {
	switch strings.ToLower(path.Ext(p)) {
	case ".zst", ".zstd":
		return Zstd
	case ".gz", ".gzip":
		return Gzip
	}
	return nil
}

// Detect peeks at the start of r and returns the codec whose magic number
// it carries, Plain when none does. The returned reader replays the peeked
// bytes and must be used in place of r.
func Detect(r io.Reader) (Codec, io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	for _, c := range known {
		if m := c.magic(); len(m) > 0 && bytes.HasPrefix(head, m) {
			return c, br, nil
		}
	}
	return Plain, br, nil
}

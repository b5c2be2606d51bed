package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/hotpath/internal/codec"
	"github.com/discochess/hotpath/internal/source"
)

const (
	// DefaultSourceURL is a public English word list, one word per line.
	DefaultSourceURL = "https://raw.githubusercontent.com/dwyl/english-words/master/words.txt"

	// BaseName is the file name of a built word list before the codec extension.
	BaseName = "words.txt"

	progressEvery = 50000
)

// Builder builds a word list data directory from source data.
type Builder struct {
	sourceURL string
	outputDir string
	codec     codec.Codec
	progress  ProgressFunc
	tempDir   string
	dedupe    bool
	logger    *zap.Logger
}

// Option configures the Builder.
type Option func(*Builder)

// WithSourceURL sets the source URL.
func WithSourceURL(url string) Option {
	return func(b *Builder) { b.sourceURL = url }
}

// WithOutputDir sets the output directory.
func WithOutputDir(dir string) Option {
	return func(b *Builder) { b.outputDir = dir }
}

// WithCodec sets the codec for the written word list.
func WithCodec(c codec.Codec) Option {
	return func(b *Builder) { b.codec = c }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) { b.progress = fn }
}

// WithTempDir sets the temporary directory for downloads.
func WithTempDir(dir string) Option {
	return func(b *Builder) { b.tempDir = dir }
}

// WithDedupe drops repeated words, keeping the first occurrence.
// Off by default: the cached strategy must cope with duplicates.
func WithDedupe(on bool) Option {
	return func(b *Builder) { b.dedupe = on }
}

// WithLogger sets the logger used while downloading.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a new Builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		sourceURL: DefaultSourceURL,
		outputDir: "./data",
		codec:     codec.Zstd,
		progress:  DefaultProgressFunc,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build downloads the source word list and processes it.
func (b *Builder) Build(ctx context.Context) (*Manifest, error) {
	startTime := time.Now()

	if b.tempDir == "" {
		b.tempDir = filepath.Join(b.outputDir, ".tmp")
	}
	if err := os.MkdirAll(b.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(b.tempDir)

	downloadPath := filepath.Join(b.tempDir, "source"+filepath.Ext(b.sourceURL))
	b.reportProgress(Progress{Phase: PhaseDownload, Started: startTime})

	downloader := NewDownloader(WithDownloadLogger(b.logger))
	if err := downloader.DownloadToFile(ctx, b.sourceURL, downloadPath, b.progress); err != nil {
		return nil, fmt.Errorf("downloading source: %w", err)
	}

	return b.BuildFromFile(ctx, downloadPath, startTime)
}

// BuildFromFile builds the data directory from a local word list. The
// source is decompressed according to its extension.
func (b *Builder) BuildFromFile(ctx context.Context, sourcePath string, startTime time.Time) (*Manifest, error) {
	if startTime.IsZero() {
		startTime = time.Now()
	}

	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	file, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	defer file.Close()

	var bytesRead atomic.Int64
	in, err := source.Wrap(codec.ForPath(sourcePath), io.NopCloser(countingReader{Reader: file, n: &bytesRead}))
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer in.Close()

	name := BaseName + b.codec.Suffix()
	outPath := filepath.Join(b.outputDir, name)
	tmpPath := outPath + ".partial"

	out, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("creating word list: %w", err)
	}
	defer os.Remove(tmpPath)

	w, err := b.codec.NewWriter(out)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	bw := bufio.NewWriter(w)

	seen := make(map[string]struct{})
	var read, written, raw int64

	b.reportProgress(Progress{Phase: PhaseRead, Started: startTime})
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		word := strings.TrimSpace(sc.Text())
		if word == "" {
			continue
		}
		read++
		if read%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				out.Close()
				return nil, err
			}
			b.reportProgress(Progress{
				Phase:   PhaseRead,
				Words:   read,
				Bytes:   bytesRead.Load(),
				Started: startTime,
			})
		}

		_, dup := seen[word]
		if dup && b.dedupe {
			continue
		}
		if !dup {
			seen[word] = struct{}{}
		}
		if _, err := bw.WriteString(word); err != nil {
			out.Close()
			return nil, fmt.Errorf("writing word list: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			out.Close()
			return nil, fmt.Errorf("writing word list: %w", err)
		}
		written++
		raw += int64(len(word)) + 1
	}
	if err := sc.Err(); err != nil {
		out.Close()
		return nil, fmt.Errorf("reading source: %w", err)
	}

	if err := bw.Flush(); err != nil {
		out.Close()
		return nil, fmt.Errorf("flushing word list: %w", err)
	}
	if err := w.Close(); err != nil {
		out.Close()
		return nil, fmt.Errorf("closing compressor: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("closing word list: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return nil, fmt.Errorf("renaming word list: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("stat word list: %w", err)
	}

	manifest := &Manifest{
		Version:     1,
		File:        name,
		WordCount:   written,
		UniqueWords: int64(len(seen)),
		Bytes:       info.Size(),
		RawBytes:    raw,
		BuiltAt:     time.Now().UTC(),
		SourceURL:   b.sourceURL,
		Compression: b.codec.Name(),
	}
	if err := WriteManifest(b.outputDir, manifest); err != nil {
		return nil, err
	}

	b.reportProgress(Progress{
		Phase:   PhaseDone,
		Words:   read,
		Written: written,
		Bytes:   bytesRead.Load(),
		Started: startTime,
	})

	return manifest, nil
}

func (b *Builder) reportProgress(p Progress) {
	if b.progress != nil {
		b.progress(p)
	}
}

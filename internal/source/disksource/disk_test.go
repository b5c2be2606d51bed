package disksource

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/discochess/hotpath/internal/codec"
	"github.com/discochess/hotpath/internal/source"
)

func readLines(t *testing.T, rc io.ReadCloser) []string {
	t.Helper()
	defer rc.Close()

	var lines []string
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	return lines
}

func TestSource_Open_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s := New(path)
	rc, err := s.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got := readLines(t, rc)
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("lines = %v, want [alpha beta]", got)
	}
}

func writeZstd(t *testing.T, path string, data string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()
	w, err := codec.Zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := w.Write([]byte(data)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestSource_Open_Zstd(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"by suffix", "words.txt.zst"},
		{"by content", "words"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeZstd(t, path, "gamma\ndelta\n")

			rc, err := New(path).Open(context.Background())
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			got := readLines(t, rc)
			if len(got) != 2 || got[0] != "gamma" {
				t.Errorf("lines = %v, want [gamma delta]", got)
			}
		})
	}
}

func TestSource_Open_NotFound(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.txt"))

	_, err := s.Open(context.Background())
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestSource_Open_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("unused.txt").Open(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Open() error = %v, want context.Canceled", err)
	}
}

func TestSource_WithCodec(t *testing.T) {
	s := New("words.zst", WithCodec(codec.Plain))
	if got := s.codec.Name(); got != "none" {
		t.Errorf("codec = %q, want %q", got, "none")
	}
	if got := s.Name(); got != "disk:words.zst" {
		t.Errorf("Name() = %q, want %q", got, "disk:words.zst")
	}
}

func TestSource_Stat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	info, err := New(path).Stat(context.Background())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size != 11 || info.Modified.IsZero() {
		t.Errorf("Stat() = %+v, want size 11 and a modification time", info)
	}

	_, err = New(filepath.Join(t.TempDir(), "missing.txt")).Stat(context.Background())
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Stat() missing error = %v, want ErrNotFound", err)
	}
}

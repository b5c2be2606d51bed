package s3source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/hotpath/internal/codec"
	"github.com/discochess/hotpath/internal/source"
)

// fakeAPI serves a single object, or NoSuchKey/NotFound when body is nil.
type fakeAPI struct {
	body     []byte
	modified time.Time
}

func (f *fakeAPI) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.body == nil {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func (f *fakeAPI) HeadObject(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.body == nil {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(f.body))),
		LastModified:  aws.Time(f.modified),
	}, nil
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := codec.Gzip.NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	io.WriteString(w, s)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func TestNew_WithClient(t *testing.T) {
	client := s3.New(s3.Options{Region: "us-east-1"})

	s, err := New(context.Background(), "dicts", "en/words.txt.zst", WithClient(client))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := s.Name(); got != "s3://dicts/en/words.txt.zst" {
		t.Errorf("Name() = %q, want %q", got, "s3://dicts/en/words.txt.zst")
	}
	if got := s.codec.Suffix(); got != ".zst" {
		t.Errorf("codec suffix = %q, want %q", got, ".zst")
	}
	if s.client != client {
		t.Error("client was replaced despite WithClient")
	}
}

func TestNew_WithEndpoint(t *testing.T) {
	s, err := New(context.Background(), "dicts", "words.txt",
		WithRegion("eu-west-1"),
		WithEndpoint("http://localhost:9000"),
		WithCodec(codec.Gzip),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	opts := s.client.(*s3.Client).Options()
	if got := aws.ToString(opts.BaseEndpoint); got != "http://localhost:9000" {
		t.Errorf("BaseEndpoint = %q, want %q", got, "http://localhost:9000")
	}
	if !opts.UsePathStyle {
		t.Error("UsePathStyle = false, want true for custom endpoint")
	}
	if opts.Region != "eu-west-1" {
		t.Errorf("Region = %q, want %q", opts.Region, "eu-west-1")
	}
	if got := s.codec.Name(); got != "gzip" {
		t.Errorf("codec = %q, want gzip", got)
	}
}

func TestSource_Open(t *testing.T) {
	ctx := context.Background()
	body := gzipped(t, "cat\ndog\n")

	// The key has no suffix, so the codec is detected from the content.
	s := &Source{client: &fakeAPI{body: body}, bucket: "dicts", key: "words"}
	rc, err := s.Open(ctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "cat\ndog\n" {
		t.Errorf("Open() content = %q", got)
	}

	missing := &Source{client: &fakeAPI{}, bucket: "dicts", key: "words"}
	if _, err := missing.Open(ctx); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Open() missing error = %v, want ErrNotFound", err)
	}
}

func TestSource_Stat(t *testing.T) {
	ctx := context.Background()
	mod := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Source{client: &fakeAPI{body: []byte("0123456789"), modified: mod}}

	info, err := source.Stat(ctx, s)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size != 10 || !info.Modified.Equal(mod) {
		t.Errorf("Stat() = %+v, want size 10 modified %v", info, mod)
	}

	missing := &Source{client: &fakeAPI{}}
	if _, err := missing.Stat(ctx); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Stat() missing error = %v, want ErrNotFound", err)
	}
}

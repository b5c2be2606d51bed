package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnexpectedStatus is returned when the server answers with neither
// 200 nor 206.
var ErrUnexpectedStatus = errors.New("dataset: unexpected HTTP status")

// Downloader fetches word lists over HTTP. Partial files are resumed with
// a Range request, so a failed attempt is retried from where it stopped.
type Downloader struct {
	client  *http.Client
	retries int
	backoff time.Duration
	logger  *zap.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) { d.client = client }
}

// WithRetries sets how many times a failed transfer is resumed, waiting
// backoff, then twice that, between attempts. Default 2 and one second.
func WithRetries(n int, backoff time.Duration) DownloaderOption {
	return func(d *Downloader) {
		d.retries = max(n, 0)
		d.backoff = backoff
	}
}

// WithDownloadLogger sets the logger for retry messages.
func WithDownloadLogger(l *zap.Logger) DownloaderOption {
	return func(d *Downloader) { d.logger = l }
}

// NewDownloader creates a Downloader.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		retries: 2,
		backoff: time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DownloadToFile downloads url to destPath, resuming whatever destPath
// already holds.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string, progress ProgressFunc) error {
	wait := d.backoff
	for attempt := 0; ; attempt++ {
		err := d.fetch(ctx, url, destPath, progress)
		if err == nil || errors.Is(err, ErrUnexpectedStatus) || attempt >= d.retries {
			return err
		}
		d.logger.Warn("download interrupted, resuming",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}

func (d *Downloader) fetch(ctx context.Context, url, destPath string, progress ProgressFunc) error {
	var have int64
	if info, err := os.Stat(destPath); err == nil {
		have = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if have > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(have, 10)+"-")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading: %w", err)
	}
	defer resp.Body.Close()

	flags := os.O_WRONLY | os.O_CREATE
	total := resp.ContentLength
	switch resp.StatusCode {
	case http.StatusPartialContent:
		flags |= os.O_APPEND
		if n, ok := rangeTotal(resp.Header.Get("Content-Range")); ok {
			total = n
		} else if total >= 0 {
			total += have
		}
	case http.StatusOK:
		flags |= os.O_TRUNC
		have = 0
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	file, err := os.OpenFile(destPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	body := io.Reader(resp.Body)
	if progress != nil {
		body = &progressReader{r: body, n: have, total: total, fn: progress}
	}
	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	return file.Close()
}

// rangeTotal returns the complete length from a "bytes a-b/total"
// Content-Range header.
func rangeTotal(header string) (int64, bool) {
	_, size, ok := strings.Cut(header, "/")
	if !ok || size == "*" {
		return 0, false
	}
	n, err := strconv.ParseInt(size, 10, 64)
	return n, err == nil
}

type progressReader struct {
	r     io.Reader
	n     int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	k, err := p.r.Read(b)
	if k > 0 {
		p.n += int64(k)
		p.fn(Progress{Phase: PhaseDownload, Bytes: p.n, Total: p.total})
	}
	return k, err
}

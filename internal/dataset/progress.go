// Package dataset builds, downloads and publishes word lists.
package dataset

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// Phase names a stage of a build or publish.
type Phase string

const (
	PhaseDownload Phase = "download"
	PhaseRead     Phase = "read"
	PhaseUpload   Phase = "upload"
	PhaseDone     Phase = "done"
)

// Progress is a point-in-time view of a running build.
type Progress struct {
	Phase Phase
	// Bytes is the number of bytes processed in this phase; Total is the
	// expected size when known.
	Bytes int64
	Total int64
	// Words counts non-blank lines read; Written those kept after dedupe.
	Words   int64
	Written int64
	Started time.Time
}

// String renders p as a single status line.
func (p Progress) String() string {
	switch p.Phase {
	case PhaseDownload:
		if p.Total <= 0 {
			return fmt.Sprintf("[download] %s", FormatBytes(p.Bytes))
		}
		return fmt.Sprintf("[download] %s / %s (%.1f%%)",
			FormatBytes(p.Bytes), FormatBytes(p.Total), float64(p.Bytes)/float64(p.Total)*100)
	case PhaseRead:
		return fmt.Sprintf("[read] %d words, %s", p.Words, FormatBytes(p.Bytes))
	case PhaseUpload:
		return fmt.Sprintf("[upload] %s", FormatBytes(p.Bytes))
	case PhaseDone:
		return fmt.Sprintf("[done] %d of %d words written in %s",
			p.Written, p.Words, FormatDuration(time.Since(p.Started)))
	}
	return string(p.Phase)
}

// ProgressFunc is called periodically with progress updates.
type ProgressFunc func(Progress)

// PrintProgress returns a ProgressFunc that redraws one line on w per
// update and ends the line once the build is done.
func PrintProgress(w io.Writer) ProgressFunc {
	return func(p Progress) {
		if p.Phase == PhaseDone {
			fmt.Fprintf(w, "\r%s\n", p)
			return
		}
		fmt.Fprintf(w, "\r%s", p)
	}
}

// DefaultProgressFunc prints progress to stdout.
var DefaultProgressFunc = PrintProgress(os.Stdout)

// countingReader adds every byte read to n.
type countingReader struct {
	io.Reader
	n *atomic.Int64
}

func (r countingReader) Read(p []byte) (int, error) {
	k, err := r.Reader.Read(p)
	r.n.Add(int64(k))
	return k, err
}

// FormatBytes formats bytes as human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

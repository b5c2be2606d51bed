package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ManifestFilename is the name of the manifest inside a data directory.
	ManifestFilename = "manifest.json"
	// ManifestVersion is the newest manifest layout this package reads.
	ManifestVersion = 1
)

// ErrBadManifest is returned for manifests that cannot describe a word list.
var ErrBadManifest = errors.New("dataset: bad manifest")

// Manifest describes a built word list.
type Manifest struct {
	Version     int       `json:"version"`
	File        string    `json:"file"`
	WordCount   int64     `json:"word_count"`
	UniqueWords int64     `json:"unique_words"`
	Bytes       int64     `json:"bytes"`     // on disk
	RawBytes    int64     `json:"raw_bytes"` // newline-terminated, uncompressed
	BuiltAt     time.Time `json:"built_at"`
	SourceURL   string    `json:"source_url,omitempty"`
	Compression string    `json:"compression"`
}

// Ratio is the compression ratio RawBytes/Bytes, or 0 if either is unknown.
func (m *Manifest) Ratio() float64 {
	if m.Bytes <= 0 || m.RawBytes <= 0 {
		return 0
	}
	return float64(m.RawBytes) / float64(m.Bytes)
}

func (m *Manifest) validate() error {
	switch {
	case m.File == "":
		return fmt.Errorf("%w: missing file", ErrBadManifest)
	case m.File != filepath.Base(m.File) || strings.ContainsAny(m.File, `/\`):
		return fmt.Errorf("%w: file %q must be a bare name", ErrBadManifest, m.File)
	case m.Version > ManifestVersion:
		return fmt.Errorf("%w: version %d is newer than %d", ErrBadManifest, m.Version, ManifestVersion)
	case m.WordCount < 0 || m.UniqueWords > m.WordCount:
		return fmt.Errorf("%w: %d unique of %d words", ErrBadManifest, m.UniqueWords, m.WordCount)
	}
	return nil
}

// WriteManifest replaces the manifest in dir. The new manifest is written
// beside the old one and renamed over it.
func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFilename)
	tmp := path + ".partial"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads and validates the manifest of a data directory.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFilename))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadManifest, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// WordListPath returns the path of the word list the manifest in dir
// names.
func WordListPath(dir string) (string, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, m.File), nil
}

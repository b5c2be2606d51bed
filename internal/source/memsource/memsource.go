// Package memsource provides an in-memory word list for tests and demos.
package memsource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/discochess/hotpath/internal/source"
)

var (
	_ source.Source = (*Source)(nil)
	_ source.Stater = (*Source)(nil)
)

// Source is an in-memory word list.
type Source struct {
	mu   sync.RWMutex
	data []byte
	ok   bool
}

// New creates a source holding words, one per line.
func New(words ...string) *Source {
	s := &Source{}
	s.Set(words...)
	return s
}

// Set replaces the word list.
func (s *Source) Set(words ...string) {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(w)
		b.WriteByte('\n')
	}
	s.SetRaw([]byte(b.String()))
}

// SetRaw replaces the word list with raw file contents.
// The data is copied to prevent caller mutations from affecting the source.
func (s *Source) SetRaw(data []byte) {
	copied := make([]byte, len(data))
	copy(copied, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = copied
	s.ok = true
}

// Clear removes the word list so that Open reports source.ErrNotFound.
func (s *Source) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.ok = false
}

// Open returns a reader over the current word list.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ok {
		return nil, source.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// Stat reports the length of the list. Modified is always zero.
func (s *Source) Stat(ctx context.Context) (source.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ok {
		return source.Info{}, source.ErrNotFound
	}
	return source.Info{Size: int64(len(s.data))}, nil
}

// Name returns "memory".
func (s *Source) Name() string {
	return "memory"
}

// Close is a no-op for the memory source.
func (s *Source) Close() error {
	return nil
}

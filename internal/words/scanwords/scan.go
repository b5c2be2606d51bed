// Package scanwords implements the linear-scan word lookup strategy.
//
// Every call opens the word list and reads it line by line. File opens,
// bytes, lines and comparisons are recorded so the analyzer can see the
// cost of doing this on a hot path.
package scanwords

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/hotpath/internal/registry"
	"github.com/discochess/hotpath/internal/source"
	"github.com/discochess/hotpath/internal/words"
)

// Compile-time check that Strategy implements words.Strategy.
var _ words.Strategy = (*Strategy)(nil)

// maxLineSize bounds a single word list line.
const maxLineSize = 1 << 20

// ctxCheckEvery is how many lines are scanned between cancellation checks.
const ctxCheckEvery = 4096

// Strategy scans the source on every call.
type Strategy struct {
	src      source.Source
	registry *registry.Registry
	index    words.IndexFunc
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithRegistry sets the registry that receives measurements.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Strategy) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithIndex overrides today's index, e.g. to pin a date in tests.
func WithIndex(f words.IndexFunc) Option {
	return func(s *Strategy) {
		if f != nil {
			s.index = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Strategy) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a linear-scan strategy over src. Nothing is read until the
// first call.
func New(src source.Source, opts ...Option) *Strategy {
	s := &Strategy{
		src:      src,
		registry: registry.New(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	s.index = s.indexForToday
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "scan".
func (s *Strategy) Name() string {
	return "scan"
}

// Registry returns the registry receiving measurements.
func (s *Strategy) Registry() *registry.Registry {
	return s.registry
}

// WordOfTheDay scans to today's index and returns the word there.
func (s *Strategy) WordOfTheDay(ctx context.Context) (string, error) {
	start := time.Now()
	defer func() {
		s.registry.RecordMethodExecution(words.MethodWordOfTheDay, time.Since(start))
	}()

	target := s.index()

	word := words.NoWordToday
	err := s.scan(ctx, func(i int, line string) bool {
		if i == target {
			word = line
			return true
		}
		return false
	}, false)
	if err != nil {
		return "", err
	}
	return word, nil
}

// Exists scans the list comparing every line with word until a match.
func (s *Strategy) Exists(ctx context.Context, word string) (bool, error) {
	start := time.Now()
	defer func() {
		s.registry.RecordMethodExecution(words.MethodWordExists, time.Since(start))
	}()

	found := false
	err := s.scan(ctx, func(_ int, line string) bool {
		if line == word {
			found = true
			return true
		}
		return false
	}, true)
	if err != nil {
		return false, err
	}
	return found, nil
}

// indexForToday is the default IndexFunc; it is itself timed.
func (s *Strategy) indexForToday() int {
	start := time.Now()
	i := words.DayIndex(s.now())
	s.registry.RecordMethodExecution(words.MethodIndexForToday, time.Since(start))
	return i
}

// scan opens the source and feeds lines to visit until it returns true.
// File metrics are recorded once per call, including on early exit.
func (s *Strategy) scan(ctx context.Context, visit func(i int, line string) bool, compare bool) error {
	openStart := time.Now()
	rc, err := s.src.Open(ctx)
	openTime := time.Since(openStart)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("word list unavailable",
			zap.String("source", s.src.Name()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s: %w", words.ErrDataUnavailable, s.src.Name(), err)
	}
	defer rc.Close()

	var (
		lines     int64
		bytesRead int64
	)
	defer func() {
		s.registry.RecordLinesScanned(lines)
		s.registry.RecordFileRead(bytesRead, openTime)
	}()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Text()
		lines++
		bytesRead += int64(len(line)) + 1
		if compare {
			s.registry.RecordStringComparison()
		}
		if visit(int(lines-1), line) {
			return nil
		}
		if lines%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: reading %s: %w", words.ErrDataUnavailable, s.src.Name(), err)
	}
	return nil
}

// Package words defines the word lookup contract measured by the registry.
//
// Two strategies implement it: scanwords re-reads the word list on every
// call and cachedwords loads it once into memory. They must agree on every
// answer; only their cost differs.
package words

import (
	"context"
	"errors"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrDataUnavailable is returned when the word list is missing or unreadable.
// It is never reported as "word does not exist".
var ErrDataUnavailable = errors.New("words: data unavailable")

// NoWordToday is returned by WordOfTheDay when the day index is past the
// end of the word list.
const NoWordToday = "No word today."

// Method names recorded in the registry.
const (
	MethodWordExists     = "wordExists"
	MethodWordOfTheDay   = "getWordOfTheDay"
	MethodIndexForToday  = "getIndexForToday"
	MethodLoadDictionary = "loadDictionary"
)

// Strategy looks up words.
type Strategy interface {
	// WordOfTheDay returns the word at today's index, or NoWordToday.
	WordOfTheDay(ctx context.Context) (string, error)

	// Exists reports whether word is in the list. Matching is exact and
	// case-sensitive.
	Exists(ctx context.Context, word string) (bool, error)

	// Name identifies the strategy, e.g. "scan" or "cached".
	Name() string
}

// CacheStats describes an in-memory word index.
type CacheStats struct {
	TotalWords      int     `json:"totalWords"`
	CachedWords     int     `json:"cachedWords"`
	LoadTimeMs      float64 `json:"loadTimeMs"`
	MemoryUsedBytes int64   `json:"memoryUsed"`
}

// String formats the stats on one line with grouped digits.
func (c CacheStats) String() string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("Cache Stats: %d words (%d unique), load time: %.2f ms, memory: %d bytes",
		c.TotalWords, c.CachedWords, c.LoadTimeMs, c.MemoryUsedBytes)
}

// StatsProvider is implemented by strategies that hold an in-memory index.
type StatsProvider interface {
	CacheStats() CacheStats
}

// IndexFunc returns the word index to use for a WordOfTheDay call.
type IndexFunc func() int

// DayIndex maps a date to a word index: year + dayOfYear*100.
func DayIndex(t time.Time) int {
	return t.Year() + t.YearDay()*100
}

// Today returns the DayIndex of the current local date.
func Today() int {
	return DayIndex(time.Now())
}

// FixedIndex returns an IndexFunc that always yields i.
func FixedIndex(i int) IndexFunc {
	return func() int { return i }
}

// IndexForDate returns an IndexFunc pinned to t's date.
func IndexForDate(t time.Time) IndexFunc {
	i := DayIndex(t)
	return func() int { return i }
}

// Package config loads settings for the hotpath command and service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/discochess/hotpath/internal/codec"
)

// Strategy names accepted in configuration.
const (
	StrategyScan   = "scan"
	StrategyCached = "cached"
)

// Config holds every tunable of the command and service.
type Config struct {
	Strategy     string  `mapstructure:"strategy"`
	Dataset      string  `mapstructure:"dataset"`
	Codec        string  `mapstructure:"codec"`
	LRUSize      int     `mapstructure:"lru_size"`
	Date         string  `mapstructure:"date"`
	HotPathRatio float64 `mapstructure:"hot_path_ratio"`

	S3Region   string `mapstructure:"s3_region"`
	S3Endpoint string `mapstructure:"s3_endpoint"`

	Listen string `mapstructure:"listen"`

	Workers         int           `mapstructure:"workers"`
	WordExistsRPS   float64       `mapstructure:"word_exists_rps"`
	WordOfTheDayRPS float64       `mapstructure:"word_of_the_day_rps"`
	Duration        time.Duration `mapstructure:"duration"`

	Verbose bool `mapstructure:"verbose"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Strategy:        StrategyScan,
		Dataset:         "./data",
		Codec:           "auto",
		HotPathRatio:    10,
		Listen:          ":8080",
		Workers:         4,
		WordExistsRPS:   20,
		WordOfTheDayRPS: 1,
		Duration:        30 * time.Second,
	}
}

// SimulatedDate parses Date (YYYY-MM-DD). The second result is false when
// no date is configured.
func (c Config) SimulatedDate() (time.Time, bool, error) {
	if strings.TrimSpace(c.Date) == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.DateOnly, c.Date)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("date: %w", err)
	}
	return t, true, nil
}

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns a copy of the problems found.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	var issues []string

	switch c.Strategy {
	case StrategyScan, StrategyCached:
	default:
		issues = append(issues, fmt.Sprintf("strategy must be %q or %q, got %q", StrategyScan, StrategyCached, c.Strategy))
	}
	if strings.TrimSpace(c.Dataset) == "" {
		issues = append(issues, "dataset is required")
	}
	if _, err := codec.ByName(c.Codec); err != nil {
		issues = append(issues, err.Error())
	}
	if c.LRUSize < 0 {
		issues = append(issues, "lru_size must be non-negative")
	}
	if c.HotPathRatio <= 0 {
		issues = append(issues, "hot_path_ratio must be positive")
	}
	if c.Workers <= 0 {
		issues = append(issues, "workers must be positive")
	}
	if c.WordExistsRPS < 0 || c.WordOfTheDayRPS < 0 {
		issues = append(issues, "rates must be non-negative")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be non-negative")
	}
	if _, _, err := c.SimulatedDate(); err != nil {
		issues = append(issues, err.Error())
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. HOTPATH_STRATEGY.
const EnvPrefix = "HOTPATH"

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"strategy":            "strategy",
	"dataset":             "dataset",
	"codec":               "codec",
	"lru-size":            "lru_size",
	"date":                "date",
	"hot-path-ratio":      "hot_path_ratio",
	"s3-region":           "s3_region",
	"s3-endpoint":         "s3_endpoint",
	"listen":              "listen",
	"workers":             "workers",
	"word-exists-rps":     "word_exists_rps",
	"word-of-the-day-rps": "word_of_the_day_rps",
	"duration":            "duration",
	"verbose":             "verbose",
}

// Load builds a Config from, in increasing priority: defaults, the YAML
// file at configPath (if non-empty), HOTPATH_* environment variables,
// and flags in fs that were set explicitly. fs may be nil.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("strategy", def.Strategy)
	v.SetDefault("dataset", def.Dataset)
	v.SetDefault("codec", def.Codec)
	v.SetDefault("lru_size", def.LRUSize)
	v.SetDefault("date", def.Date)
	v.SetDefault("hot_path_ratio", def.HotPathRatio)
	v.SetDefault("s3_region", def.S3Region)
	v.SetDefault("s3_endpoint", def.S3Endpoint)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("word_exists_rps", def.WordExistsRPS)
	v.SetDefault("word_of_the_day_rps", def.WordOfTheDayRPS)
	v.SetDefault("duration", def.Duration)
	v.SetDefault("verbose", def.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigFile = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

package config

import (
	"github.com/spf13/pflag"
)

// RegisterFlags adds the dataset and strategy flags shared by every
// subcommand that talks to a word list.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String("strategy", def.Strategy, "Lookup strategy: scan or cached")
	fs.String("dataset", def.Dataset, "Data directory, word list file, s3://bucket/key or gs://bucket/key")
	fs.String("codec", def.Codec, "Word list codec: auto, zstd, gzip or none")
	fs.Int("lru-size", def.LRUSize, "Memoize up to N Exists answers (0 disables)")
	fs.String("date", def.Date, "Simulated date for word of the day (YYYY-MM-DD)")
	fs.Float64("hot-path-ratio", def.HotPathRatio, "Traffic ratio that marks an endpoint as the hot path")
	fs.String("s3-region", def.S3Region, "AWS region for s3:// datasets")
	fs.String("s3-endpoint", def.S3Endpoint, "Custom S3 endpoint (MinIO and similar)")
}

// RegisterLoadFlags adds the traffic simulation flags.
func RegisterLoadFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.Int("workers", def.Workers, "Concurrent workers per endpoint")
	fs.Float64("word-exists-rps", def.WordExistsRPS, "word-exists requests per second")
	fs.Float64("word-of-the-day-rps", def.WordOfTheDayRPS, "word-of-the-day requests per second")
	fs.Duration("duration", def.Duration, "Simulation duration")
}

// RegisterServeFlags adds the HTTP service flags.
func RegisterServeFlags(fs *pflag.FlagSet) {
	fs.String("listen", Default().Listen, "HTTP listen address")
}

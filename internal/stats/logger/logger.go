// Package logger mirrors registry recordings into a zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/discochess/hotpath/internal/stats"
)

// Collector writes one log entry per recording at a fixed level.
type Collector struct {
	logger *zap.Logger
	level  zapcore.Level
}

var _ stats.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithLevel sets the level entries are written at. Default debug.
func WithLevel(l zapcore.Level) Option {
	return func(c *Collector) { c.level = l }
}

// New returns a collector writing to logger; nil discards.
func New(logger *zap.Logger, opts ...Option) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{logger: logger, level: zapcore.DebugLevel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) IncCounter(metric, key string, delta int64) {
	c.write("counter", metric, key, zap.Int64("delta", delta))
}

func (c *Collector) SetGauge(metric, key string, value int64) {
	c.write("gauge", metric, key, zap.Int64("value", value))
}

func (c *Collector) ObserveHistogram(metric, key string, value float64) {
	c.write("histogram", metric, key, zap.Float64("value", value))
}

// write skips field construction entirely when the level is disabled;
// recordings sit on every request path.
func (c *Collector) write(kind, metric, key string, v zap.Field) {
	ce := c.logger.Check(c.level, kind)
	if ce == nil {
		return
	}
	if label := stats.KeyLabel(metric); label != "" {
		ce.Write(zap.String("metric", metric), zap.String(label, key), v)
		return
	}
	ce.Write(zap.String("metric", metric), v)
}

// Package prometheus exports recorded metrics as Prometheus vectors.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/hotpath/internal/stats"
)

// durationBuckets span 10µs to about 2.6s.
var durationBuckets = prometheus.ExponentialBuckets(0.00001, 4, 10)

// Collector implements stats.Collector. Each metric becomes a vector,
// created and registered on first use, with the metric's key label
// (see stats.KeyLabel) as its only dimension.
type Collector struct {
	registry   prometheus.Registerer
	counters   family[*prometheus.CounterVec]
	gauges     family[*prometheus.GaugeVec]
	histograms family[*prometheus.HistogramVec]
}

var _ stats.Collector = (*Collector)(nil)

// New creates a Collector that registers with registry, or with
// prometheus.DefaultRegisterer when registry is nil.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{registry: registry}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(metric, key string, delta int64) {
	vec := c.counters.get(c.registry, metric, func(o opts) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Name: o.name, Help: o.help}, o.labels)
	})
	vec.WithLabelValues(labelValues(metric, key)...).Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(metric, key string, value int64) {
	vec := c.gauges.get(c.registry, metric, func(o opts) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: o.name, Help: o.help}, o.labels)
	})
	vec.WithLabelValues(labelValues(metric, key)...).Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(metric, key string, value float64) {
	vec := c.histograms.get(c.registry, metric, func(o opts) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    o.name,
			Help:    o.help,
			Buckets: durationBuckets,
		}, o.labels)
	})
	vec.WithLabelValues(labelValues(metric, key)...).Observe(value)
}

func labelValues(metric, key string) []string {
	if stats.KeyLabel(metric) != "" {
		return []string{key}
	}
	return nil
}

type opts struct {
	name   string
	help   string
	labels []string
}

// family caches the vectors of one metric kind by name.
type family[V prometheus.Collector] struct {
	mu   sync.RWMutex
	vecs map[string]V
}

func (f *family[V]) get(reg prometheus.Registerer, name string, create func(opts) V) V {
	f.mu.RLock()
	vec, ok := f.vecs[name]
	f.mu.RUnlock()
	if ok {
		return vec
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if vec, ok = f.vecs[name]; ok {
		return vec
	}

	o := opts{name: name, help: stats.Help(name)}
	if label := stats.KeyLabel(name); label != "" {
		o.labels = []string{label}
	}
	vec = create(o)
	if err := reg.Register(vec); err != nil {
		// Share a vector registered by another Collector. On any other
		// error the unregistered vector still accumulates.
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(V); ok {
				vec = existing
			}
		}
	}

	if f.vecs == nil {
		f.vecs = make(map[string]V)
	}
	f.vecs[name] = vec
	return vec
}

package stats

// Multi fans every call out to a fixed set of collectors.
type Multi []Collector

// Compile-time check that Multi implements Collector.
var _ Collector = Multi(nil)

// NewMulti combines collectors, skipping nil entries.
func NewMulti(collectors ...Collector) Multi {
	m := make(Multi, 0, len(collectors))
	for _, c := range collectors {
		if c != nil {
			m = append(m, c)
		}
	}
	return m
}

func (m Multi) IncCounter(metric, key string, delta int64) {
	for _, c := range m {
		c.IncCounter(metric, key, delta)
	}
}

func (m Multi) SetGauge(metric, key string, value int64) {
	for _, c := range m {
		c.SetGauge(metric, key, value)
	}
}

func (m Multi) ObserveHistogram(metric, key string, value float64) {
	for _, c := range m {
		c.ObserveHistogram(metric, key, value)
	}
}

package betree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors an embedder may wire into a
// Tree's call sites. A nil *Metrics is valid everywhere it's accepted,
// since every method is a no-op on a nil receiver, so instrumentation
// stays optional.
type Metrics struct {
	Flushes        prometheus.Counter
	Splits         prometheus.Counter
	BufferedMsgs   prometheus.Gauge
	FlushRunLength prometheus.Histogram
}

// NewMetrics registers a Metrics set against reg under the betree_
// namespace.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "betree",
			Name:      "flushes_total",
			Help:      "Number of internal-node flushes performed.",
		}),
		Splits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "betree",
			Name:      "splits_total",
			Help:      "Number of node splits performed.",
		}),
		BufferedMsgs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "betree",
			Name:      "buffered_messages",
			Help:      "Pending messages in the buffer of the internal node most recently updated.",
		}),
		FlushRunLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "betree",
			Name:      "flush_run_length",
			Help:      "Length of the message run selected by each flush.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

func (m *Metrics) observeFlush(runLength int) {
	if m == nil {
		return
	}
	m.Flushes.Inc()
	m.FlushRunLength.Observe(float64(runLength))
}

func (m *Metrics) observeSplit() {
	if m == nil {
		return
	}
	m.Splits.Inc()
}

func (m *Metrics) setBufferedMsgs(n int) {
	if m == nil {
		return
	}
	m.BufferedMsgs.Set(float64(n))
}

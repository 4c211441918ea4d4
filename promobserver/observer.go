// Package promobserver exports free list statistics to Prometheus.
package promobserver

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pavanmanishd/freelist"
)

var _ freelist.Observer = (*Observer)(nil)

// Observer implements freelist.Observer with Prometheus collectors.
//
// Gauges move by deltas, so one Observer may be shared by several free
// lists (a list and its clones, for example) and reports their sum.
type Observer struct {
	chunks        prometheus.Gauge
	bytes         prometheus.Gauge
	chunksAdded   prometheus.Counter
	chunksDropped prometheus.Counter
	compactions   prometheus.Counter
	relocations   prometheus.Counter
}

// New creates an Observer whose metric names are prefixed with namespace
// and registers its collectors with reg. A nil reg uses the default
// registerer.
func New(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &Observer{
		chunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "freelist_chunks",
			Help:      "Number of chunks held by the observed free lists",
		}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "freelist_bytes",
			Help:      "Footprint of the observed chunk slot arrays in bytes",
		}),
		chunksAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freelist_chunks_added_total",
			Help:      "Total chunks appended",
		}),
		chunksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freelist_chunks_dropped_total",
			Help:      "Total trailing chunks dropped",
		}),
		compactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freelist_compactions_total",
			Help:      "Total compaction passes",
		}),
		relocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freelist_relocations_total",
			Help:      "Total values relocated by compaction",
		}),
	}

	for _, c := range []prometheus.Collector{
		o.chunks, o.bytes, o.chunksAdded, o.chunksDropped, o.compactions, o.relocations,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ChunkAdded implements freelist.Observer.
func (o *Observer) ChunkAdded(_ int, bytes int64) {
	o.chunks.Inc()
	o.bytes.Add(float64(bytes))
	o.chunksAdded.Inc()
}

// ChunkDropped implements freelist.Observer.
func (o *Observer) ChunkDropped(_ int, bytes int64) {
	o.chunks.Dec()
	o.bytes.Sub(float64(bytes))
	o.chunksDropped.Inc()
}

// Compacted implements freelist.Observer.
func (o *Observer) Compacted(moves int) {
	o.compactions.Inc()
	o.relocations.Add(float64(moves))
}

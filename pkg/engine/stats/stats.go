// Package stats exposes the engine's optional statistics block (spec
// §4.5/§6) as a prometheus.Collector: proc count, processed vector
// count, output vectors flushed for NaN/Inf samples, and ring-buffer under/overrun
// counters. Sampling happens from whatever goroutine scrapes metrics,
// never from inside Process.
package stats

import "github.com/prometheus/client_golang/prometheus"

// Block is the live counters a running engine updates. All fields are
// read with relaxed consistency (plain loads) because Prometheus
// scraping tolerates a torn snapshot far better than Process can
// tolerate a lock.
type Block struct {
	ProcCount      func() int
	VectorCount    func() uint64
	NonFiniteCount func() uint64
	Underruns      func() uint64
	Overruns       func() uint64
}

var (
	procCountDesc = prometheus.NewDesc(
		"dspgraph_engine_proc_count", "Number of procs in the compiled engine graph.", nil, nil)
	vectorCountDesc = prometheus.NewDesc(
		"dspgraph_engine_vectors_processed_total", "Total audio vectors processed.", nil, nil)
	nonFiniteDesc = prometheus.NewDesc(
		"dspgraph_engine_nonfinite_samples_total", "Total output vectors in which NaN/Inf samples were detected and flushed.", nil, nil)
	underrunsDesc = prometheus.NewDesc(
		"dspgraph_engine_ring_underruns_total", "Total I/O ring buffer underruns.", nil, nil)
	overrunsDesc = prometheus.NewDesc(
		"dspgraph_engine_ring_overruns_total", "Total I/O ring buffer overruns.", nil, nil)
)

// Collector adapts a Block into a prometheus.Collector.
type Collector struct {
	block Block
}

// NewCollector wraps block for registration with a prometheus.Registry.
func NewCollector(block Block) *Collector {
	return &Collector{block: block}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- procCountDesc
	ch <- vectorCountDesc
	ch <- nonFiniteDesc
	ch <- underrunsDesc
	ch <- overrunsDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.block.ProcCount != nil {
		ch <- prometheus.MustNewConstMetric(procCountDesc, prometheus.GaugeValue, float64(c.block.ProcCount()))
	}
	if c.block.VectorCount != nil {
		ch <- prometheus.MustNewConstMetric(vectorCountDesc, prometheus.CounterValue, float64(c.block.VectorCount()))
	}
	if c.block.NonFiniteCount != nil {
		ch <- prometheus.MustNewConstMetric(nonFiniteDesc, prometheus.CounterValue, float64(c.block.NonFiniteCount()))
	}
	if c.block.Underruns != nil {
		ch <- prometheus.MustNewConstMetric(underrunsDesc, prometheus.CounterValue, float64(c.block.Underruns()))
	}
	if c.block.Overruns != nil {
		ch <- prometheus.MustNewConstMetric(overrunsDesc, prometheus.CounterValue, float64(c.block.Overruns()))
	}
}

var _ prometheus.Collector = (*Collector)(nil)

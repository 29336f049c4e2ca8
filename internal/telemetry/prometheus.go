package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/OrlandoBitencourt/beacon/internal/domain"
)

// Snapshot is the point-in-time state exported by Collector
type Snapshot struct {
	CacheHits      uint64
	CacheMisses    uint64
	CacheEvictions uint64
	CacheWrites    uint64
	RemoteCalls    uint64
	RemoteFailures map[domain.FailureKind]uint64
}

// Collector exposes client counters as Prometheus metrics.
// Values are read from the snapshot function at scrape time.
type Collector struct {
	snapshot func() Snapshot

	cacheHits      *prometheus.Desc
	cacheMisses    *prometheus.Desc
	cacheEvictions *prometheus.Desc
	cacheWrites    *prometheus.Desc
	remoteCalls    *prometheus.Desc
	remoteFailures *prometheus.Desc
}

// NewCollector creates a collector; constLabels are attached to every metric.
func NewCollector(snapshot func() Snapshot, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string, variableLabels ...string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName("beacon", "", name),
			help, variableLabels, constLabels,
		)
	}

	return &Collector{
		snapshot:       snapshot,
		cacheHits:      desc("cache_hits_total", "Evaluations answered from the cache"),
		cacheMisses:    desc("cache_misses_total", "Cache lookups that found no fresh entry"),
		cacheEvictions: desc("cache_evictions_total", "Stale entries evicted on read"),
		cacheWrites:    desc("cache_writes_total", "Values written to the cache"),
		remoteCalls:    desc("remote_calls_total", "Calls made to the evaluation service"),
		remoteFailures: desc("remote_failures_total", "Failed calls to the evaluation service", "kind"),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.cacheEvictions
	ch <- c.cacheWrites
	ch <- c.remoteCalls
	ch <- c.remoteFailures
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.snapshot()

	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(s.CacheHits))
	ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(s.CacheMisses))
	ch <- prometheus.MustNewConstMetric(c.cacheEvictions, prometheus.CounterValue, float64(s.CacheEvictions))
	ch <- prometheus.MustNewConstMetric(c.cacheWrites, prometheus.CounterValue, float64(s.CacheWrites))
	ch <- prometheus.MustNewConstMetric(c.remoteCalls, prometheus.CounterValue, float64(s.RemoteCalls))

	for _, kind := range domain.FailureKinds() {
		ch <- prometheus.MustNewConstMetric(c.remoteFailures, prometheus.CounterValue,
			float64(s.RemoteFailures[kind]), string(kind))
	}
}

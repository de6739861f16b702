package cache

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats counts coordinator outcomes since construction.
type Stats struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Loads         uint64 `json:"loads"`
	Invalidations uint64 `json:"invalidations"`
	CacheErrors   uint64 `json:"cache_errors"`
	StoreErrors   uint64 `json:"store_errors"`
}

type counters struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	loads         atomic.Uint64
	invalidations atomic.Uint64
	cacheErrors   atomic.Uint64
	storeErrors   atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Loads:         c.loads.Load(),
		Invalidations: c.invalidations.Load(),
		CacheErrors:   c.cacheErrors.Load(),
		StoreErrors:   c.storeErrors.Load(),
	}
}

// StatsSource is satisfied by every Coordinator instantiation.
type StatsSource interface {
	Stats() Stats
	StoreName() string
}

// StatsCollector exports a StatsSource as prometheus counters labelled by store.
type StatsCollector struct {
	src           StatsSource
	hits          *prometheus.Desc
	misses        *prometheus.Desc
	loads         *prometheus.Desc
	invalidations *prometheus.Desc
	cacheErrors   *prometheus.Desc
	storeErrors   *prometheus.Desc
}

func NewStatsCollector(namespace string, src StatsSource) *StatsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", name),
			help, []string{"store"}, nil,
		)
	}
	return &StatsCollector{
		src:           src,
		hits:          desc("hits_total", "Snapshot reads served from the cache"),
		misses:        desc("misses_total", "Snapshot reads that fell back to the repository"),
		loads:         desc("loads_total", "Repository loads of the whole collection"),
		invalidations: desc("invalidations_total", "Successful snapshot invalidations"),
		cacheErrors:   desc("errors_total", "Cache failures absorbed by the coordinator"),
		storeErrors:   desc("store_errors_total", "Repository failures returned to callers"),
	}
}

func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.loads
	ch <- c.invalidations
	ch <- c.cacheErrors
	ch <- c.storeErrors
}

func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	store := c.src.StoreName()
	for _, m := range []struct {
		desc *prometheus.Desc
		val  uint64
	}{
		{c.hits, s.Hits},
		{c.misses, s.Misses},
		{c.loads, s.Loads},
		{c.invalidations, s.Invalidations},
		{c.cacheErrors, s.CacheErrors},
		{c.storeErrors, s.StoreErrors},
	} {
		ch <- prometheus.MustNewConstMetric(m.desc, prometheus.CounterValue, float64(m.val), store)
	}
}

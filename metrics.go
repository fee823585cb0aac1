package bankstore

import (
	"github.com/adorsys-gis/bankstore/indexes"
	"github.com/prometheus/client_golang/prometheus"
)

var StoreOps = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bankstore",
	Subsystem: "store",
	Name:      "ops",
}, []string{"kind", "op", "result"})

var StoreNoopSkips = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bankstore",
	Subsystem: "store",
	Name:      "noop_skips",
}, []string{"kind"})

var StoreBatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "bankstore",
	Subsystem: "store",
	Name:      "batch_duration_ms",
	Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 200, 500},
}, []string{"kind", "op"})

// RegisterMetrics registers every store and cache vector plus the
// pebble runtime collector of db with reg.
func RegisterMetrics(reg prometheus.Registerer, db *DB) error {
	cs := []prometheus.Collector{
		StoreOps, StoreNoopSkips, StoreBatchDuration,
		indexes.CacheLookups, indexes.CacheRecords, indexes.CacheMutations,
	}
	if db != nil {
		cs = append(cs, NewPebbleCollector(db.Database()))
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

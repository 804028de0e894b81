package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// syncRunsTotal counts sync pipeline runs by outcome. "rejected"
	// means the single-flight guard turned away an overlapping trigger.
	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Total number of catalog sync runs by outcome",
		},
		[]string{"status"},
	)

	// syncEntriesInserted holds the entry count of the last successful run.
	syncEntriesInserted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_sync_inserted_entries",
			Help: "Number of catalog entries inserted by the last successful sync",
		},
	)

	// syncBatchesTotal counts upsert batches sent to the mirror store.
	syncBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_sync_batches_total",
			Help: "Total number of upsert batches sent to the mirror store",
		},
	)

	// syncDuration observes end-to-end sync run duration.
	syncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Duration of catalog sync runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)

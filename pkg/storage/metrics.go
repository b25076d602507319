package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mergeWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokscraper_merge_writes_total",
		Help: "Number of merge-write operations against CSV tables.",
	})

	rowsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokscraper_rows_written_total",
		Help: "Total rows persisted across all tables after deduplication.",
	})
)

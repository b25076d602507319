package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokscraper_operations_total",
		Help: "Scrape operations by kind and outcome.",
	}, []string{"operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokscraper_operation_duration_seconds",
		Help:    "End to end scrape operation duration, acquisition through persistence.",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	}, []string{"operation"})

	cacheFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokscraper_cache_fallbacks_total",
		Help: "Times an empty refetch was answered from the last known good result.",
	})
)

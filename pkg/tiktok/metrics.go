package tiktok

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters live next to the code that increments them; pkg/metrics
// documents the full set and serves the exposition endpoint.
var (
	fetchAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokscraper_fetch_attempts_total",
		Help: "Endpoint fetch attempts, including retries.",
	}, []string{"endpoint"})

	fetchOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokscraper_fetch_outcomes_total",
		Help: "Final fetch outcomes by endpoint, labelled success or the error type.",
	}, []string{"endpoint", "outcome"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokscraper_retries_total",
		Help: "Retries by endpoint and the error type that caused them.",
	}, []string{"endpoint", "reason"})

	retryDelaySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tokscraper_retry_delay_seconds",
		Help:    "Delay slept before each retry.",
		Buckets: []float64{0.5, 1, 2, 3, 4, 6, 10},
	})

	hardBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokscraper_hard_blocks_total",
		Help: "Responses carrying the endpoint's block status code.",
	}, []string{"endpoint"})

	sessionInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokscraper_session_invalidations_total",
		Help: "Times the session parameter set was dropped and rebuilt.",
	})

	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokscraper_pages_total",
		Help: "Listing pages fetched successfully, by endpoint.",
	}, []string{"endpoint"})

	searchFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokscraper_search_fallbacks_total",
		Help: "Hashtag listings that fell back to search after repeated blocks.",
	})
)

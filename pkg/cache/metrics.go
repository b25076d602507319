package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokscraper_cache_hits_total",
		Help: "Cache lookups that found a stored result.",
	})

	missesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokscraper_cache_misses_total",
		Help: "Cache lookups that found nothing.",
	})
)

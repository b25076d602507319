// Package metrics exposes the Prometheus registry the scraper reports
// into and an optional exposition server. The metrics themselves are
// declared via promauto in the packages that increment them, so this
// package carries no dependency back into the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the registerer every pipeline metric attaches to.
var Registry = prometheus.DefaultRegisterer

// Metric reference
//
// Browser lifecycle (pkg/browser):
//   - tokscraper_browser_startup_attempts_total (Counter): browser launch attempts
//   - tokscraper_browser_restarts_total (Counter): execution context restarts
//
// Endpoint acquisition (pkg/tiktok):
//   - tokscraper_fetch_attempts_total{endpoint} (Counter): signed fetch attempts
//   - tokscraper_fetch_outcomes_total{endpoint, outcome} (Counter): classified outcomes
//     (success, transient, endpoint_error, hard_block, transport, signing)
//   - tokscraper_retries_total{endpoint, reason} (Counter): retry decisions by error class
//   - tokscraper_retry_delay_seconds (Histogram): backoff delay between attempts
//   - tokscraper_hard_blocks_total{endpoint} (Counter): permanent block codes observed
//   - tokscraper_session_invalidations_total (Counter): session parameter resets
//   - tokscraper_pages_total{endpoint} (Counter): pagination pages fetched
//   - tokscraper_search_fallbacks_total (Counter): listings replaced by a search fallback
//
// Result cache (pkg/cache):
//   - tokscraper_cache_hits_total (Counter): cache reads that found an entry
//   - tokscraper_cache_misses_total (Counter): cache reads that found nothing
//
// Persistence (pkg/storage):
//   - tokscraper_rows_written_total (Counter): rows written across all CSV files
//   - tokscraper_merge_writes_total (Counter): merge/dedup write operations
//
// Facade (pkg/scraper):
//   - tokscraper_cache_fallbacks_total (Counter): saves served from the result cache
//     because a refetch came back empty
//
// Useful queries:
//
//	# Fetch success rate over 5 minutes
//	sum(rate(tokscraper_fetch_outcomes_total{outcome="success"}[5m])) /
//	sum(rate(tokscraper_fetch_attempts_total[5m]))
//
//	# Endpoints currently being blocked
//	rate(tokscraper_hard_blocks_total[15m]) > 0
//
//	# P95 retry delay
//	histogram_quantile(0.95, rate(tokscraper_retry_delay_seconds_bucket[5m]))

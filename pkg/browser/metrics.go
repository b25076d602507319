package browser

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for execution context lifecycle.
var (
	startupAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokscraper_browser_startup_attempts_total",
		Help: "Total number of browser launch attempts",
	})

	contextRestartsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokscraper_browser_restarts_total",
		Help: "Total number of execution context restarts",
	})
)

package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tokscraper/pkg/logger"
)

// Server exposes /metrics for Prometheus scraping. It is optional: a
// run without a configured listen address never starts one.
type Server struct {
	httpServer *http.Server
	log        logger.Logger
}

// NewServer builds an exposition server bound to addr (e.g. ":9811").
func NewServer(addr string, log logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start serves in a background goroutine. Scrape traffic must never
// block the pipeline, so errors are logged rather than returned.
func (s *Server) Start() {
	s.log.InfoWithFields("metrics server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.ErrorWithFields("metrics server stopped", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}

// Stop shuts the server down, waiting briefly for in-flight scrapes.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)
}

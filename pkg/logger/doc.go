// Package logger provides a structured logging interface for the TikTok scraper.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output
// - Context support for request tracing
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "tokscraper/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "/var/log/tokscraper.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Execution context started")
//	logger.WithField("endpoint", "user_videos").Info("Listing started")
//	logger.WithError(err).Error("Signed fetch failed")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "acquire").
//	    WithField("context_id", "9f61c8a2")
//
//	// Use structured logging
//	log.InfoWithFields("Listing finished", map[string]interface{}{
//	    "endpoint": "hashtag_videos",
//	    "rows":     350,
//	    "pages":    10,
//	    "duration": time.Second * 42,
//	})
//
// The logger supports the following configuration options:
// - Level: Log level (debug, info, warn, error, fatal)
// - File: Path to log file (empty for console only)
package logger

package logger

// This file shows how to integrate the logger into the main application

/*
Example integration in cmd/tokscraper:

package main

import (
	"os"

	"tokscraper/pkg/config"
	"tokscraper/pkg/logger"
	"tokscraper/pkg/scraper"
	"tokscraper/pkg/ui"
)

func runUser(username string, flags map[string]interface{}) {
	// Show ASCII logo
	ui.PrintLogo()

	// Load configuration (flags > env > .env > file > defaults)
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Configuration error: " + err.Error())
		os.Exit(1)
	}

	// Initialize the global logger before any component starts
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Logger error: " + err.Error())
		os.Exit(1)
	}

	logger.LogComponentStart("scraper", map[string]interface{}{
		"target": username,
		"output": cfg.Output.BaseDirectory,
	})

	s, err := scraper.New(cfg)
	if err != nil {
		// Startup failures are the only fatal class; everything later
		// degrades to empty or partial results.
		logger.WithError(err).Fatal("Execution context could not be started")
	}
	defer s.Close()

	result, err := s.ScrapeUser(username, cfg.Acquisition.DefaultCount)
	if err != nil {
		logger.WithError(err).Error("Run finished with errors")
	}

	logger.LogRowsWritten(result.File, result.Existing, result.Incoming, result.Written)
	logger.LogComponentStop("scraper", "run complete")
}

Log output levels used across the pipeline:

  debug  per-call detail: signed URLs, sentinel framing, cursor values
  info   run milestones: context start, page progress, rows merged
  warn   retries, session invalidations, hard blocks, fallbacks
  error  exhausted attempt budgets, persistence failures
  fatal  startup failures only
*/

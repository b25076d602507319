package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tokscraper/pkg/config"
	"tokscraper/pkg/logger"
	"tokscraper/pkg/scraper"
	"tokscraper/pkg/ui"
	"tokscraper/pkg/ui/tui"
)

// batchWorkers is set by the batch command's --workers flag; zero means
// take the value from config.
var batchWorkers int

// buildFlags collects the command line values that should override the
// configuration file and environment.
func buildFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if msToken != "" {
		flags["ms-token"] = msToken
	}
	if chromePath != "" {
		flags["chrome"] = chromePath
	}
	if headful {
		flags["headful"] = true
	}
	if count > 0 {
		flags["count"] = count
	}
	if cookiesFile != "" {
		flags["cookies"] = cookiesFile
	}
	if batchWorkers > 0 {
		flags["workers"] = batchWorkers
	}
	if metricsAddr != "" {
		flags["metrics-addr"] = metricsAddr
	}
	if noCache {
		flags["no-cache"] = true
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if quiet {
		flags["log-level"] = "error"
	}
	// Console logs would tear the dashboard frame
	if useTUI && logLevel == "" {
		flags["log-level"] = "error"
	}
	return flags
}

// mustLoadConfig loads the configuration or exits with the reason.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configFile, buildFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	return cfg
}

// runContext is cancelled on Ctrl-C so in-flight operations unwind,
// partial rows still merge, and the run report gets written.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// scrapeFunc is one facade operation bound to its command arguments.
type scrapeFunc func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error)

// executeScrape runs a single operation end to end: configuration, session
// start-up, the operation, then shutdown. Errors exit the process.
func executeScrape(target string, fn scrapeFunc) {
	cfg := mustLoadConfig()

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging: %v", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("tokscraper starting")

	ctx, stop := runContext()
	defer stop()

	if useTUI {
		executeScrapeTUI(ctx, cfg, fn)
		return
	}

	if target != "" {
		ui.PrintInfo("Target", target)
	}

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper: %v", err)
		os.Exit(1)
	}
	if err := s.Start(ctx); err != nil {
		ui.PrintError("Failed to start acquisition session: %v", err)
		os.Exit(1)
	}

	_, opErr := fn(ctx, s, cfg)
	if err := s.Close(); err != nil {
		log.WithError(err).Warn("Session shutdown was not clean")
	}
	if opErr != nil {
		log.WithError(opErr).Error("Acquisition failed")
		ui.PrintError("Acquisition failed: %v", opErr)
		os.Exit(1)
	}
}

// executeScrapeTUI runs the same flow with the dashboard on the main
// goroutine and the scraper reporting into it from a second one.
func executeScrapeTUI(ctx context.Context, cfg *config.Config, fn scrapeFunc) {
	terminal := tui.NewTUI()

	scraperDone := make(chan error, 1)
	go func() {
		s, err := scraper.New(cfg)
		if err != nil {
			scraperDone <- err
			return
		}
		s.SetTUI(terminal)
		if err := s.Start(ctx); err != nil {
			scraperDone <- err
			return
		}
		_, opErr := fn(ctx, s, cfg)
		if cerr := s.Close(); opErr == nil {
			opErr = cerr
		}
		scraperDone <- opErr
	}()

	tuiDone := make(chan error, 1)
	go func() {
		tuiDone <- terminal.Start()
	}()

	select {
	case err := <-scraperDone:
		terminal.Stop()
		<-tuiDone
		if err != nil {
			logger.GetLogger().WithError(err).Error("Acquisition failed")
			os.Exit(1)
		}
	case err := <-tuiDone:
		// Dashboard quit first, either by key or by failure
		if err != nil {
			logger.GetLogger().WithError(err).Error("Dashboard failed")
			os.Exit(1)
		}
	}
}

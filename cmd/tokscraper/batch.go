package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tokscraper/internal/batch"
	"tokscraper/pkg/config"
	"tokscraper/pkg/logger"
	"tokscraper/pkg/metrics"
	"tokscraper/pkg/scraper"
	"tokscraper/pkg/storage"
	"tokscraper/pkg/ui"
	"tokscraper/pkg/ui/tui"
)

var batchKind string

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [jobs.yaml]",
	Short: "Run many acquisition jobs over a worker pool",
	Long: `Run independent acquisition jobs concurrently. Each worker drives its
own browser session, and all workers merge rows through one shared output
directory.

Jobs come either from a YAML file:

    jobs:
      - kind: user
        target: somecreator
        count: 50
      - kind: hashtag
        target: cats
      - kind: trending

or from --kind plus target arguments, which applies one kind to every
target.`,
	Example: `  # Jobs from a file, four browser sessions
  tokscraper batch jobs.yaml --workers 4

  # Same kind for several creators
  tokscraper batch --kind user creator1 creator2 creator3

  # With the live dashboard
  tokscraper batch jobs.yaml --tui`,
	Args: cobra.ArbitraryArgs,
	Run:  runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchKind, "kind", "", "job kind applied to every target argument")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent browser sessions (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging: %v", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("tokscraper batch starting")

	jobs, err := batchJobs(cfg, args)
	if err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}

	ctx, stop := runContext()
	defer stop()

	manager, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		ui.PrintError("Failed to create storage manager: %v", err)
		os.Exit(1)
	}

	// One metrics server for the whole run; worker scrapers must not race
	// for the listen address or the shared report file.
	var metricsServer *metrics.Server
	if cfg.Metrics.Addr != "" {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, log)
		metricsServer.Start()
	}
	workerCfg := *cfg
	workerCfg.Metrics.Addr = ""
	workerCfg.Output.WriteReport = false

	var terminal *tui.TUI
	if useTUI {
		terminal = tui.NewTUI()
		terminal.PlanJobs(len(jobs))
	}

	factory := func(ctx context.Context, workerID int) (batch.Runner, error) {
		s, err := scraper.NewWithStorage(&workerCfg, manager)
		if err != nil {
			return nil, err
		}
		if terminal != nil {
			s.SetTUI(terminal)
		}
		if err := s.Start(ctx); err != nil {
			return nil, err
		}
		return batch.NewScraperRunner(s, cfg.Acquisition.DefaultCount), nil
	}

	pool := batch.NewPool(ctx, cfg, factory, log)
	pool.Start()

	tracker := ui.NewStatusTracker()
	var display *ui.ProgressDisplay
	if terminal == nil {
		display = ui.NewProgressDisplay(len(jobs), false)
	}

	failed := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range pool.Results() {
			label := strings.TrimSpace(res.Job.Kind + " " + res.Job.Target)
			if res.Err != nil {
				failed++
				tracker.RecordFailure()
				if display != nil {
					display.FailJob(label, res.Err)
				}
				continue
			}
			tracker.RecordSuccess(res.Rows)
			if display != nil {
				display.CompleteJob(label, res.Rows)
			}
		}
	}()

	submitAndWait := func() {
		for _, job := range jobs {
			if err := pool.Submit(job); err != nil {
				log.WithError(err).Error("Could not queue remaining jobs")
				break
			}
		}
		pool.Stop()
		<-done
	}

	if terminal != nil {
		batchDone := make(chan struct{})
		go func() {
			submitAndWait()
			terminal.Stop()
			close(batchDone)
		}()
		if err := terminal.Start(); err != nil {
			log.WithError(err).Error("Dashboard failed")
		}
		<-batchDone
	} else {
		submitAndWait()
		display.Complete()
		tracker.PrintSummary()
	}

	if metricsServer != nil {
		metricsServer.Stop()
	}

	log.InfoWithFields("Batch run finished", map[string]interface{}{
		"jobs":   len(jobs),
		"failed": failed,
	})
	if failed > 0 {
		os.Exit(1)
	}
}

// batchJobs resolves the job list from a file argument or from --kind
// plus targets.
func batchJobs(cfg *config.Config, args []string) ([]batch.Job, error) {
	if batchKind != "" {
		kind, err := batch.NormalizeKind(batchKind)
		if err != nil {
			return nil, err
		}
		if !batch.NeedsTarget(kind) && len(args) == 0 {
			return []batch.Job{{Kind: kind, Count: cfg.Acquisition.DefaultCount}}, nil
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("--kind %s needs at least one target argument", kind)
		}
		jobs := make([]batch.Job, 0, len(args))
		for _, target := range args {
			jobs = append(jobs, batch.Job{Kind: kind, Target: target, Count: cfg.Acquisition.DefaultCount})
		}
		return jobs, nil
	}

	if len(args) != 1 {
		return nil, fmt.Errorf("pass a jobs file, or --kind with target arguments")
	}
	return batch.LoadJobs(args[0], cfg.Acquisition.DefaultCount)
}

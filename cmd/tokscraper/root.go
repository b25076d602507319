package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"tokscraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	quiet       bool
	useTUI      bool
	outputDir   string
	msToken     string
	chromePath  string
	headful     bool
	count       int
	cookiesFile string
	metricsAddr string
	noCache     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tokscraper",
	Short: "Collect TikTok data through the web player's own hidden endpoints",
	Long: `tokscraper drives a real browser session so its requests to TikTok's
hidden JSON endpoints carry valid signatures, then flattens the responses
into CSV tables.

Every command merges rows into its table by key: rerunning a command adds
what is new and never loses what a previous run already collected.

Features:
  - User videos, profiles, liked videos and playlists
  - Hashtag, sound, playlist and trending feeds
  - Comment threads with reply expansion
  - Search across videos, users and mixed results
  - Batch mode running jobs over concurrent browser sessions
  - Cookie import for logged-in acquisition
  - Live terminal dashboard with --tui`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}

		// The dashboard owns the whole screen, so no logo in TUI mode
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" && !useTUI {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (default is .tokscraper.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	pf.BoolVar(&useTUI, "tui", false, "live terminal dashboard")
	pf.StringVarP(&outputDir, "output", "o", "", "directory CSV tables are written to")
	pf.StringVar(&msToken, "ms-token", "", "msToken to present instead of harvesting one from the session")
	pf.StringVar(&chromePath, "chrome", "", "path to the Chrome or Chromium binary")
	pf.BoolVar(&headful, "headful", false, "run the browser with a visible window")
	pf.IntVarP(&count, "count", "n", 0, "how many rows to aim for (default from config)")
	pf.StringVar(&cookiesFile, "cookies", "", "cookie export file to load before acquisition")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "listen address for the Prometheus metrics endpoint")
	pf.BoolVar(&noCache, "no-cache", false, "disable the in-run result cache")

	rootCmd.SetVersionTemplate(`tokscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

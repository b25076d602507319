package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tokscraper/pkg/config"
	"tokscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage tokscraper configuration.

Configuration is merged from several sources:
  - Command line flags (highest priority)
  - Environment variables (TOKSCRAPER_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with the commonly tuned options.

The file is created as '.tokscraper.yaml' in the current directory unless
a different path is given with --config.`,
	Run: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging every source. The msToken is
masked.`,
	Run: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

// Keys whose empty value would override a required default (like
// user_agent) are left out, as are the duration fields, which YAML
// carries as nanosecond integers.
const exampleConfig = `# tokscraper configuration
#
# Every value can also come from environment variables prefixed with
# TOKSCRAPER_, for example TOKSCRAPER_MS_TOKEN or TOKSCRAPER_OUTPUT_DIR.

tiktok:
  # Base URL of the site the browser session navigates
  base_url: "https://www.tiktok.com"

  # msToken to present instead of harvesting one from the warm-up
  # navigation. Leave empty to let the session mint its own.
  ms_token: ""

  # Two-letter region hint sent with every request
  region: "US"

browser:
  # Run Chrome headless; set false to watch the session work
  headless: true

  # Explicit Chrome/Chromium binary (empty finds one on PATH)
  chrome_path: ""

  # Viewport size the session reports
  window_width: 1920
  window_height: 1080

  # Launch attempts before the run gives up
  startup_attempts: 3

acquisition:
  # Attempts per page fetch before the operation moves on
  max_attempts: 5

  # Rows aimed for when --count is not given
  default_count: 50

rate_limit:
  # token_bucket or sliding_window
  strategy: "token_bucket"
  requests_per_minute: 30
  burst_size: 5

output:
  # Where CSV tables and the run report land
  base_directory: "./data"
  write_report: true

cache:
  # Keep results in memory so an empty refetch can fall back to them
  enabled: true

cookies:
  # Cookie export file loaded before acquisition (empty for none)
  file: ""

  # Jar store backend: none, file, encrypted or keyring
  store: "none"

  # Save session cookies back to the store after warm-up
  auto_save: false

batch:
  # Concurrent browser sessions in batch mode (max 8)
  workers: 2
  queue_size: 16

metrics:
  # Prometheus listen address, for example "127.0.0.1:9090".
  # Empty disables the exporter.
  addr: ""

notifications:
  enabled: true
  on_complete: true
  on_error: true
  on_hard_block: true
  # terminal, desktop or none
  notification_type: "terminal"

logging:
  # debug, info, warn or error
  level: "info"

  # Log file (empty for console only)
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".tokscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists: %s", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file: %v", err)
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: %s", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Adjust the output directory and rate limit to taste")
	fmt.Println("2. Run 'tokscraper config validate' to check the result")
	fmt.Println("3. Collect something: 'tokscraper user <username>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Mask the session token before printing
	displayCfg := *cfg
	if displayCfg.TikTok.MSToken != "" {
		token := displayCfg.TikTok.MSToken
		if len(token) > 8 {
			displayCfg.TikTok.MSToken = token[:4] + "..." + token[len(token)-4:]
		} else {
			displayCfg.TikTok.MSToken = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration: %v", err)
		os.Exit(1)
	}

	ui.PrintHighlight("Effective configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (TOKSCRAPER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in standard locations)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		home := os.Getenv("HOME")
		candidates := []string{
			".tokscraper.yaml",
			".tokscraper.yml",
			filepath.Join(home, ".config", "tokscraper", "config.yaml"),
			filepath.Join(home, ".config", "tokscraper", "config.yml"),
			filepath.Join(home, ".tokscraper.yaml"),
			filepath.Join(home, ".tokscraper.yml"),
		}
		for _, path := range candidates {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}
		if configFile == "" {
			ui.PrintError("No configuration file found; specify one with --config")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed: %v", err)
		os.Exit(1)
	}

	var warnings []string
	var errs []string

	// A session with no msToken source still works, it just gets the thin
	// logged-out treatment from search
	if cfg.TikTok.MSToken == "" && cfg.Cookies.File == "" && (cfg.Cookies.Store == "" || cfg.Cookies.Store == "none") {
		warnings = append(warnings, "no msToken, cookie file or cookie store configured; search results may be thin")
	}

	if cfg.Output.BaseDirectory != "" {
		if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
			errs = append(errs, fmt.Sprintf("cannot create output directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			errs = append(errs, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}
	if cfg.Cookies.File != "" {
		if _, err := os.Stat(cfg.Cookies.File); err != nil {
			warnings = append(warnings, fmt.Sprintf("cookie file is not readable: %v", err))
		}
	}

	if len(errs) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, e := range errs {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Printf("  Rate limit: %d requests/minute (%s)\n", cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Strategy)
	fmt.Printf("  Batch workers: %d\n", cfg.Batch.Workers)
	fmt.Printf("  Cookie store: %s\n", cfg.Cookies.Store)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}

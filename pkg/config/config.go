package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the TikTok scraper
type Config struct {
	// Target site settings
	TikTok TikTokConfig `yaml:"tiktok" json:"tiktok"`

	// Headless browser settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Retry and pagination behavior
	Acquisition AcquisitionConfig `yaml:"acquisition" json:"acquisition"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Result cache settings
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Cookie jar settings
	Cookies CookiesConfig `yaml:"cookies" json:"cookies"`

	// Multi-target batch settings
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// Prometheus exposition settings
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TikTokConfig holds target-site configuration
type TikTokConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	MSToken   string `yaml:"ms_token" json:"ms_token"`
	Region    string `yaml:"region" json:"region"`
	Language  string `yaml:"language" json:"language"`
}

// BrowserConfig holds execution context configuration
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	ChromePath        string        `yaml:"chrome_path" json:"chrome_path"`
	WindowWidth       int           `yaml:"window_width" json:"window_width"`
	WindowHeight      int           `yaml:"window_height" json:"window_height"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	ScriptTimeout     time.Duration `yaml:"script_timeout" json:"script_timeout"`
	StartupAttempts   int           `yaml:"startup_attempts" json:"startup_attempts"`
	WarmUpProfile     string        `yaml:"warmup_profile" json:"warmup_profile"`
}

// AcquisitionConfig holds retry and pagination configuration
type AcquisitionConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" json:"max_attempts"`
	RetryDelayMin     time.Duration `yaml:"retry_delay_min" json:"retry_delay_min"`
	RetryDelayMax     time.Duration `yaml:"retry_delay_max" json:"retry_delay_max"`
	ListingFailureCap int           `yaml:"listing_failure_cap" json:"listing_failure_cap"`
	BlockedRetryCap   int           `yaml:"blocked_retry_cap" json:"blocked_retry_cap"`
	DefaultCount      int           `yaml:"default_count" json:"default_count"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Strategy          string `yaml:"strategy" json:"strategy"`
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int    `yaml:"burst_size" json:"burst_size"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	WriteReport   bool   `yaml:"write_report" json:"write_report"`
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// CookiesConfig holds cookie jar configuration
type CookiesConfig struct {
	File     string `yaml:"file" json:"file"`
	Store    string `yaml:"store" json:"store"`
	AutoSave bool   `yaml:"auto_save" json:"auto_save"`
}

// BatchConfig holds multi-target run configuration
type BatchConfig struct {
	Workers   int `yaml:"workers" json:"workers"`
	QueueSize int `yaml:"queue_size" json:"queue_size"`
}

// MetricsConfig holds Prometheus exposition configuration.
// An empty address disables the exporter.
type MetricsConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	OnHardBlock      bool   `yaml:"on_hard_block" json:"on_hard_block"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		TikTok: TikTokConfig{
			BaseURL:   "https://www.tiktok.com",
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Region:    "US",
			// Language empty means follow the browser's own locale
			Language: "",
		},
		Browser: BrowserConfig{
			Headless:          true,
			WindowWidth:       1920,
			WindowHeight:      1080,
			NavigationTimeout: 30 * time.Second,
			ScriptTimeout:     60 * time.Second,
			StartupAttempts:   3,
			WarmUpProfile:     "tiktok",
		},
		Acquisition: AcquisitionConfig{
			MaxAttempts:       5,
			RetryDelayMin:     2 * time.Second,
			RetryDelayMax:     4 * time.Second,
			ListingFailureCap: 4,
			BlockedRetryCap:   3,
			DefaultCount:      50,
		},
		RateLimit: RateLimitConfig{
			Strategy:          "token_bucket",
			RequestsPerMinute: 30,
			BurstSize:         5,
		},
		Output: OutputConfig{
			BaseDirectory: "./data",
			WriteReport:   true,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Cookies: CookiesConfig{
			Store:    "none",
			AutoSave: false,
		},
		Batch: BatchConfig{
			Workers:   2,
			QueueSize: 16,
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnComplete:       true,
			OnError:          true,
			OnHardBlock:      true,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if msToken := os.Getenv("TOKSCRAPER_MS_TOKEN"); msToken != "" {
		c.TikTok.MSToken = msToken
	}
	if userAgent := os.Getenv("TOKSCRAPER_USER_AGENT"); userAgent != "" {
		c.TikTok.UserAgent = userAgent
	}
	if baseURL := os.Getenv("TOKSCRAPER_BASE_URL"); baseURL != "" {
		c.TikTok.BaseURL = baseURL
	}

	if chromePath := os.Getenv("TOKSCRAPER_CHROME_PATH"); chromePath != "" {
		c.Browser.ChromePath = chromePath
	}
	if headless := os.Getenv("TOKSCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) != "false"
	}

	if rpm := os.Getenv("TOKSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if outputDir := os.Getenv("TOKSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if cookiesFile := os.Getenv("TOKSCRAPER_COOKIES_FILE"); cookiesFile != "" {
		c.Cookies.File = cookiesFile
	}

	if workers := os.Getenv("TOKSCRAPER_BATCH_WORKERS"); workers != "" {
		var val int
		fmt.Sscanf(workers, "%d", &val)
		if val > 0 {
			c.Batch.Workers = val
		}
	}

	if metricsAddr := os.Getenv("TOKSCRAPER_METRICS_ADDR"); metricsAddr != "" {
		c.Metrics.Addr = metricsAddr
	}

	if notifEnabled := os.Getenv("TOKSCRAPER_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	if logLevel := os.Getenv("TOKSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".tokscraper.yaml",
		".tokscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tokscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tokscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".tokscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".tokscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.TikTok.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	} else if !strings.HasPrefix(c.TikTok.BaseURL, "http") {
		errs = append(errs, errors.New("base URL must start with http or https"))
	}
	if c.TikTok.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}

	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		errs = append(errs, errors.New("browser window size must be positive"))
	}
	if c.Browser.StartupAttempts <= 0 {
		errs = append(errs, errors.New("startup attempts must be positive"))
	}
	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Browser.ScriptTimeout < 30*time.Second || c.Browser.ScriptTimeout > 60*time.Second {
		errs = append(errs, errors.New("script timeout must be between 30s and 60s"))
	}

	if c.Acquisition.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Acquisition.RetryDelayMin <= 0 || c.Acquisition.RetryDelayMax <= 0 {
		errs = append(errs, errors.New("retry delays must be positive"))
	}
	if c.Acquisition.RetryDelayMin > c.Acquisition.RetryDelayMax {
		errs = append(errs, errors.New("retry delay min cannot exceed max"))
	}
	if c.Acquisition.ListingFailureCap <= 0 {
		errs = append(errs, errors.New("listing failure cap must be positive"))
	}
	if c.Acquisition.BlockedRetryCap <= 0 {
		errs = append(errs, errors.New("blocked retry cap must be positive"))
	}
	if c.Acquisition.DefaultCount <= 0 {
		errs = append(errs, errors.New("default count must be positive"))
	}

	validStrategies := map[string]bool{
		"token_bucket": true, "sliding_window": true,
	}
	if !validStrategies[strings.ToLower(c.RateLimit.Strategy)] {
		errs = append(errs, errors.New("invalid rate limit strategy"))
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validStores := map[string]bool{
		"none": true, "file": true, "keyring": true, "encrypted": true,
	}
	if !validStores[strings.ToLower(c.Cookies.Store)] {
		errs = append(errs, errors.New("invalid cookie store"))
	}

	if c.Batch.Workers <= 0 {
		errs = append(errs, errors.New("batch workers must be positive"))
	}
	if c.Batch.Workers > 8 {
		errs = append(errs, errors.New("batch workers should not exceed 8"))
	}
	if c.Batch.QueueSize <= 0 {
		errs = append(errs, errors.New("batch queue size must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if msToken, ok := flags["ms-token"].(string); ok && msToken != "" {
		c.TikTok.MSToken = msToken
	}
	if chromePath, ok := flags["chrome"].(string); ok && chromePath != "" {
		c.Browser.ChromePath = chromePath
	}
	if headful, ok := flags["headful"].(bool); ok && headful {
		c.Browser.Headless = false
	}
	if count, ok := flags["count"].(int); ok && count > 0 {
		c.Acquisition.DefaultCount = count
	}
	if cookiesFile, ok := flags["cookies"].(string); ok && cookiesFile != "" {
		c.Cookies.File = cookiesFile
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Batch.Workers = workers
	}
	if metricsAddr, ok := flags["metrics-addr"].(string); ok && metricsAddr != "" {
		c.Metrics.Addr = metricsAddr
	}
	if noCache, ok := flags["no-cache"].(bool); ok && noCache {
		c.Cache.Enabled = false
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tokscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

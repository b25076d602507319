package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     config, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with custom config file:
//
//     config, err := config.Load("/path/to/config.yaml", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 3. Load with command line flags:
//
//     flags := map[string]interface{}{
//         "output": "./my-data",
//         "count": 200,
//         "cookies": "./cookies.json",
//         "log-level": "debug",
//     }
//     config, err := config.Load("", flags)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 4. Environment variables (override config file values):
//
//     export TOKSCRAPER_MS_TOKEN="msToken-from-a-live-session"
//     export TOKSCRAPER_OUTPUT_DIR="/data/tiktok"
//     export TOKSCRAPER_HEADLESS="false"
//     export TOKSCRAPER_LOG_LEVEL="debug"
//
// 5. Example .tokscraper.yaml:
//
//     tiktok:
//       base_url: https://www.tiktok.com
//       region: US
//     browser:
//       headless: true
//       startup_attempts: 3
//     acquisition:
//       max_attempts: 5
//       default_count: 50
//     rate_limit:
//       strategy: token_bucket
//       requests_per_minute: 30
//     output:
//       base_directory: ./data
//     cookies:
//       file: ./cookies.json
//       store: encrypted
//       auto_save: true
//
// Precedence order (highest wins):
//   flags > environment > .env file > config file > defaults

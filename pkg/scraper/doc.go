// Package scraper provides the core functionality for acquiring TikTok data.
//
// The scraper package orchestrates the entire acquisition process,
// coordinating between the endpoint client, the result cache, storage
// management, and rate limiting.
//
// Architecture:
//
// The Scraper struct is the main component that:
//   - Paces calls through the configured rate limiter
//   - Fetches items from TikTok's hidden web endpoints via the client
//   - Serves cached results when a refetch comes back empty
//   - Maps raw items into typed CSV rows
//   - Merges rows into on-disk tables without losing prior runs
//   - Records every operation in a run report and notifies on milestones
//
// Usage:
//
//	cfg := config.DefaultConfig()
//	cfg.Output.BaseDirectory = "./data"
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := s.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	res, err := s.ScrapeUser(ctx, "somecreator", 50)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s now holds %d rows\n", res.File, res.Written)
//
// Error handling:
//
// Acquisition failures never abort a run: whatever was collected before
// the failure still gets mapped and merged, and the cache stands in when
// nothing was collected at all. Only two error classes surface from the
// Scrape methods: context cancellation and persistence failures.
//
// Storage:
//
// Each operation writes one deterministically named CSV table under the
// output directory, for example @somecreator.csv or comments_7301234.csv.
// Repeated runs against the same target merge by key column, so tables
// only ever grow.
package scraper

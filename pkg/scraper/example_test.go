package scraper_test

import (
	"context"
	"fmt"

	"tokscraper/pkg/config"
	"tokscraper/pkg/scraper"
)

func ExampleScraper_ScrapeUser() {
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = "./data"
	// A session token from a logged-in browser session improves yield
	cfg.TikTok.MSToken = "YOUR_MS_TOKEN"

	s, err := scraper.New(cfg)
	if err != nil {
		fmt.Printf("Failed to create scraper: %v\n", err)
		return
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		fmt.Printf("Failed to start scraper: %v\n", err)
		return
	}
	defer s.Close()

	// Fetch the 50 most recent videos and merge them into @example.csv
	res, err := s.ScrapeUser(ctx, "example", 50)
	if err != nil {
		fmt.Printf("Failed to scrape user: %v\n", err)
		return
	}

	fmt.Printf("%s now holds %d rows\n", res.File, res.Written)
}

func ExampleScraper_ScrapeComments() {
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = "./data"

	s, err := scraper.New(cfg)
	if err != nil {
		fmt.Printf("Failed to create scraper: %v\n", err)
		return
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		fmt.Printf("Failed to start scraper: %v\n", err)
		return
	}
	defer s.Close()

	// Share URLs work anywhere a video ID does
	res, err := s.ScrapeComments(ctx, "https://www.tiktok.com/@example/video/7301234567890123456", 100)
	if err != nil {
		fmt.Printf("Failed to scrape comments: %v\n", err)
		return
	}

	fmt.Printf("Collected %d comments into %s\n", res.Collected, res.File)
}

package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tokscraper/pkg/config"
	"tokscraper/pkg/scraper"
	"tokscraper/pkg/tiktok"
)

var (
	searchUsers   bool
	searchGeneral bool
)

// trendingCmd represents the trending command
var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Collect the logged-out For You feed",
	Long: `Collect the recommendation feed a fresh session sees. Rows merge into
foryou.csv, so repeated runs build up a sample of the feed over time.`,
	Example: `  tokscraper trending --count 30`,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		executeScrape("", func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error) {
			return s.ScrapeTrending(ctx, cfg.Acquisition.DefaultCount)
		})
	},
}

// hashtagCmd represents the hashtag command
var hashtagCmd = &cobra.Command{
	Use:     "hashtag <tag>",
	Aliases: []string{"tag"},
	Short:   "Collect videos posted under a hashtag",
	Example: `  tokscraper hashtag cats --count 100
  tokscraper hashtag "#cats"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tag := tiktok.NormalizeHashtag(args[0])
		executeScrape("#"+tag, func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error) {
			return s.ScrapeHashtag(ctx, tag, cfg.Acquisition.DefaultCount)
		})
	},
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search videos, users or everything",
	Long: `Run a search the way the site's search box does. By default video
results are collected; --users switches to account results and --general
to the mixed result list.

Search quality depends on the session: with a valid msToken the endpoint
answers like a logged-in browser, without one it may return thin results.`,
	Example: `  tokscraper search funny dogs --count 30
  tokscraper search somecreator --users
  tokscraper search "cooking hacks" --general`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSearch,
}

func init() {
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(hashtagCmd)
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchUsers, "users", false, "search for accounts instead of videos")
	searchCmd.Flags().BoolVar(&searchGeneral, "general", false, "collect the mixed result list")
	searchCmd.MarkFlagsMutuallyExclusive("users", "general")
}

func runSearch(cmd *cobra.Command, args []string) {
	query := strings.TrimSpace(strings.Join(args, " "))

	executeScrape(query, func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error) {
		switch {
		case searchUsers:
			return s.ScrapeSearchUsers(ctx, query, cfg.Acquisition.DefaultCount)
		case searchGeneral:
			return s.ScrapeSearchGeneral(ctx, query, cfg.Acquisition.DefaultCount)
		default:
			return s.ScrapeSearch(ctx, query, cfg.Acquisition.DefaultCount)
		}
	})
}

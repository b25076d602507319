package main

import (
	"context"

	"github.com/spf13/cobra"

	"tokscraper/pkg/config"
	"tokscraper/pkg/scraper"
	"tokscraper/pkg/tiktok"
)

// videoCmd represents the video command group
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Collect comments, replies or related videos for one video",
	Long: `Collect data hanging off a single video. The video can be named by
its share URL or by the bare numeric ID.`,
}

var videoCommentsCmd = &cobra.Command{
	Use:   "comments <video-url-or-id>",
	Short: "Collect the video's comment thread",
	Example: `  tokscraper video comments https://www.tiktok.com/@somecreator/video/7301234567890123456
  tokscraper video comments 7301234567890123456 --count 200`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		videoRef := args[0]
		executeScrape(tiktok.ExtractVideoID(videoRef), func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error) {
			return s.ScrapeComments(ctx, videoRef, cfg.Acquisition.DefaultCount)
		})
	},
}

var videoRelatedCmd = &cobra.Command{
	Use:   "related <video-url-or-id>",
	Short: "Collect videos the player recommends next to this one",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		videoRef := args[0]
		executeScrape(tiktok.ExtractVideoID(videoRef), func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error) {
			return s.ScrapeRelated(ctx, videoRef, cfg.Acquisition.DefaultCount)
		})
	},
}

var videoRepliesCmd = &cobra.Command{
	Use:   "replies <video-url-or-id> <comment-id>",
	Short: "Collect the replies under one comment",
	Example: `  tokscraper video replies 7301234567890123456 7302000000000000001`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		videoRef, commentID := args[0], args[1]
		executeScrape(commentID, func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error) {
			return s.ScrapeReplies(ctx, videoRef, commentID, cfg.Acquisition.DefaultCount)
		})
	},
}

func init() {
	rootCmd.AddCommand(videoCmd)
	videoCmd.AddCommand(videoCommentsCmd)
	videoCmd.AddCommand(videoRelatedCmd)
	videoCmd.AddCommand(videoRepliesCmd)
}

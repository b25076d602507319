package main

import (
	"context"

	"github.com/spf13/cobra"

	"tokscraper/pkg/config"
	"tokscraper/pkg/scraper"
	"tokscraper/pkg/tiktok"
)

var (
	userInfo      bool
	userLiked     bool
	userPlaylists bool
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user <username>",
	Short: "Collect a creator's videos, profile, likes or playlists",
	Long: `Collect data for one TikTok creator.

By default the creator's posted videos are merged into @<username>.csv in
the output directory. The flags switch to the profile table, the
liked-videos table (visible only when the account shares likes publicly)
or the playlist list.`,
	Example: `  # Latest 50 posted videos
  tokscraper user somecreator --count 50

  # Profile row
  tokscraper user somecreator --info

  # Liked videos, when the account shows them
  tokscraper user somecreator --liked

  # The creator's playlists
  tokscraper user somecreator --playlists`,
	Args: cobra.ExactArgs(1),
	Run:  runUser,
}

func init() {
	rootCmd.AddCommand(userCmd)

	userCmd.Flags().BoolVar(&userInfo, "info", false, "collect the profile row instead of videos")
	userCmd.Flags().BoolVar(&userLiked, "liked", false, "collect liked videos instead of posted ones")
	userCmd.Flags().BoolVar(&userPlaylists, "playlists", false, "collect the creator's playlists")
	userCmd.MarkFlagsMutuallyExclusive("info", "liked", "playlists")
}

func runUser(cmd *cobra.Command, args []string) {
	username := tiktok.NormalizeUsername(args[0])

	executeScrape("@"+username, func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error) {
		switch {
		case userInfo:
			return s.ScrapeUserInfo(ctx, username)
		case userLiked:
			return s.ScrapeLiked(ctx, username, cfg.Acquisition.DefaultCount)
		case userPlaylists:
			return s.ScrapeUserPlaylists(ctx, username, cfg.Acquisition.DefaultCount)
		default:
			return s.ScrapeUser(ctx, username, cfg.Acquisition.DefaultCount)
		}
	})
}

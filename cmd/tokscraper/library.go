package main

import (
	"context"

	"github.com/spf13/cobra"

	"tokscraper/pkg/config"
	"tokscraper/pkg/scraper"
)

var (
	soundInfo    bool
	playlistInfo bool
)

// soundCmd represents the sound command
var soundCmd = &cobra.Command{
	Use:     "sound <sound-id>",
	Aliases: []string{"music"},
	Short:   "Collect videos using a sound, or the sound's detail row",
	Long: `Collect the videos published with one sound. The numeric sound ID is
the last path segment of a music page URL. With --info the sound's own
metadata row is collected instead.`,
	Example: `  tokscraper sound 7016547803243022337 --count 100
  tokscraper sound 7016547803243022337 --info`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		soundID := args[0]
		executeScrape(soundID, func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error) {
			if soundInfo {
				return s.ScrapeSoundInfo(ctx, soundID)
			}
			return s.ScrapeSound(ctx, soundID, cfg.Acquisition.DefaultCount)
		})
	},
}

// playlistCmd represents the playlist command
var playlistCmd = &cobra.Command{
	Use:     "playlist <playlist-id>",
	Aliases: []string{"mix"},
	Short:   "Collect a playlist's videos, or its detail row",
	Example: `  tokscraper playlist 6948562373594532614
  tokscraper playlist 6948562373594532614 --info`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		playlistID := args[0]
		executeScrape(playlistID, func(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Result, error) {
			if playlistInfo {
				return s.ScrapePlaylistInfo(ctx, playlistID)
			}
			return s.ScrapePlaylist(ctx, playlistID, cfg.Acquisition.DefaultCount)
		})
	},
}

func init() {
	rootCmd.AddCommand(soundCmd)
	rootCmd.AddCommand(playlistCmd)

	soundCmd.Flags().BoolVar(&soundInfo, "info", false, "collect the sound's metadata row instead of its videos")
	playlistCmd.Flags().BoolVar(&playlistInfo, "info", false, "collect the playlist's metadata row instead of its videos")
}

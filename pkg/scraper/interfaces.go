package scraper

import (
	"context"

	"tokscraper/pkg/tiktok"
)

// TikTokClient defines the acquisition operations the facade orchestrates.
// The concrete implementation is tiktok.Client; tests substitute a scripted
// double so scrapes run without an execution context.
type TikTokClient interface {
	UserDetail(ctx context.Context, username string) (tiktok.Item, error)
	UserVideos(ctx context.Context, username string, count int) ([]tiktok.Item, error)
	UserLiked(ctx context.Context, username string, count int) ([]tiktok.Item, error)
	UserPlaylists(ctx context.Context, username string, count int) ([]tiktok.Item, error)
	HashtagDetail(ctx context.Context, tag string) (tiktok.Item, error)
	HashtagVideos(ctx context.Context, tag string, count int) ([]tiktok.Item, error)
	VideoComments(ctx context.Context, videoRef string, count int) ([]tiktok.Item, error)
	CommentReplies(ctx context.Context, videoRef, commentID string, count int) ([]tiktok.Item, error)
	RelatedVideos(ctx context.Context, videoRef string, count int) ([]tiktok.Item, error)
	Trending(ctx context.Context, count int) ([]tiktok.Item, error)
	SearchVideos(ctx context.Context, keyword string, count int) ([]tiktok.Item, error)
	SearchUsers(ctx context.Context, keyword string, count int) ([]tiktok.Item, error)
	SearchGeneral(ctx context.Context, keyword string, count int) ([]tiktok.Item, error)
	SoundDetail(ctx context.Context, soundID string) (tiktok.Item, error)
	SoundVideos(ctx context.Context, soundID string, count int) ([]tiktok.Item, error)
	PlaylistDetail(ctx context.Context, playlistID string) (tiktok.Item, error)
	PlaylistVideos(ctx context.Context, playlistID string, count int) ([]tiktok.Item, error)
}

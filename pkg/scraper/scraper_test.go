package scraper

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"tokscraper/pkg/config"
	"tokscraper/pkg/storage"
	"tokscraper/pkg/tiktok"
	"tokscraper/pkg/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a scripted TikTokClient. Every listing method shares one
// response script, so tests drive the pipeline without a browser.
type fakeClient struct {
	mu     sync.Mutex
	calls  map[string]int
	items  []tiktok.Item
	detail tiktok.Item
	err    error
	// script overrides items for successive listing calls when non-empty
	script [][]tiktok.Item
}

func newFakeClient(items ...tiktok.Item) *fakeClient {
	return &fakeClient{calls: make(map[string]int), items: items}
}

func (f *fakeClient) list(ctx context.Context, endpoint string) ([]tiktok.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[endpoint]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.script) > 0 {
		head := f.script[0]
		f.script = f.script[1:]
		return head, nil
	}
	return f.items, nil
}

func (f *fakeClient) one(ctx context.Context, endpoint string) (tiktok.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[endpoint]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeClient) callCount(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func (f *fakeClient) UserDetail(ctx context.Context, username string) (tiktok.Item, error) {
	return f.one(ctx, "user_detail")
}

func (f *fakeClient) UserVideos(ctx context.Context, username string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "user_videos")
}

func (f *fakeClient) UserLiked(ctx context.Context, username string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "user_liked")
}

func (f *fakeClient) UserPlaylists(ctx context.Context, username string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "user_playlists")
}

func (f *fakeClient) HashtagDetail(ctx context.Context, tag string) (tiktok.Item, error) {
	return f.one(ctx, "hashtag_detail")
}

func (f *fakeClient) HashtagVideos(ctx context.Context, tag string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "hashtag_videos")
}

func (f *fakeClient) VideoComments(ctx context.Context, videoRef string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "video_comments")
}

func (f *fakeClient) CommentReplies(ctx context.Context, videoRef, commentID string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "comment_replies")
}

func (f *fakeClient) RelatedVideos(ctx context.Context, videoRef string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "related_videos")
}

func (f *fakeClient) Trending(ctx context.Context, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "trending")
}

func (f *fakeClient) SearchVideos(ctx context.Context, keyword string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "search_videos")
}

func (f *fakeClient) SearchUsers(ctx context.Context, keyword string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "search_users")
}

func (f *fakeClient) SearchGeneral(ctx context.Context, keyword string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "search_general")
}

func (f *fakeClient) SoundDetail(ctx context.Context, soundID string) (tiktok.Item, error) {
	return f.one(ctx, "sound_detail")
}

func (f *fakeClient) SoundVideos(ctx context.Context, soundID string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "sound_videos")
}

func (f *fakeClient) PlaylistDetail(ctx context.Context, playlistID string) (tiktok.Item, error) {
	return f.one(ctx, "playlist_detail")
}

func (f *fakeClient) PlaylistVideos(ctx context.Context, playlistID string, count int) ([]tiktok.Item, error) {
	return f.list(ctx, "playlist_videos")
}

// videoItem builds a raw listing record in the shape the decoder delivers:
// numbers as json.Number, never float64.
func videoItem(id, desc string) tiktok.Item {
	return tiktok.Item{
		"id":         id,
		"desc":       desc,
		"createTime": stdjson.Number("1700000000"),
		"video":      map[string]interface{}{"duration": stdjson.Number("15")},
		"stats": map[string]interface{}{
			"diggCount":    stdjson.Number("10"),
			"shareCount":   stdjson.Number("2"),
			"commentCount": stdjson.Number("3"),
			"playCount":    stdjson.Number("1000"),
		},
		"author": map[string]interface{}{
			"uniqueId": "somecreator",
			"nickname": "Some Creator",
			"verified": true,
		},
		"authorStats": map[string]interface{}{
			"followerCount":  stdjson.Number("100"),
			"followingCount": stdjson.Number("50"),
			"heartCount":     stdjson.Number("1000"),
			"videoCount":     stdjson.Number("20"),
			"diggCount":      stdjson.Number("5"),
		},
	}
}

func newTestScraper(t *testing.T, client TikTokClient) *Scraper {
	t.Helper()
	ui.SetQuietMode(true)

	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.Notifications.NotificationType = "none"

	manager, err := storage.NewManager(cfg.Output.BaseDirectory)
	require.NoError(t, err)

	return NewWithClient(cfg, client, manager)
}

func TestNewWithClient(t *testing.T) {
	s := newTestScraper(t, newFakeClient())

	assert.NotNil(t, s.client)
	assert.NotNil(t, s.cache)
	assert.NotNil(t, s.storage)
	assert.NotNil(t, s.limiter)
	assert.NotNil(t, s.notifier)
	assert.NotNil(t, s.report)
	assert.Nil(t, s.browser)
}

func TestStartWithoutBrowser(t *testing.T) {
	s := newTestScraper(t, newFakeClient())

	// Injected clients run without an execution context
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Close())
}

func TestScrapeUserWritesTable(t *testing.T) {
	client := newFakeClient(videoItem("1", "first"), videoItem("2", "second"))
	s := newTestScraper(t, client)

	res, err := s.ScrapeUser(context.Background(), "@somecreator", 10)
	require.NoError(t, err)

	assert.Equal(t, "user_videos", res.Kind)
	assert.Equal(t, "somecreator", res.Target)
	assert.Equal(t, "@somecreator.csv", res.File)
	assert.Equal(t, 2, res.Collected)
	assert.Equal(t, 2, res.Written)
	assert.False(t, res.FromCache)

	header, rows, err := s.Storage().ReadTable(res.File)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "video_id", header[0])
	assert.Equal(t, "1", rows[0]["video_id"])
	assert.Equal(t, "first", rows[0]["video_description"])
	assert.Equal(t, "10", rows[0]["video_diggcount"])
	assert.Equal(t, "somecreator", rows[0]["author_username"])
	assert.Equal(t, "true", rows[0]["author_verified"])
}

func TestScrapeUserMergesAcrossRuns(t *testing.T) {
	client := newFakeClient()
	client.script = [][]tiktok.Item{
		{videoItem("1", "a"), videoItem("2", "b")},
		{videoItem("2", "b"), videoItem("3", "c")},
	}
	s := newTestScraper(t, client)

	first, err := s.ScrapeUser(context.Background(), "somecreator", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Written)

	second, err := s.ScrapeUser(context.Background(), "somecreator", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Written)

	_, rows, err := s.Storage().ReadTable(second.File)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestCacheFallbackOnEmptyRefetch(t *testing.T) {
	client := newFakeClient()
	client.script = [][]tiktok.Item{
		{videoItem("1", "a"), videoItem("2", "b")},
		{},
	}
	s := newTestScraper(t, client)

	first, err := s.ScrapeUser(context.Background(), "somecreator", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Collected)
	assert.False(t, first.FromCache)

	// The refetch comes back empty; the cached result stands in
	second, err := s.ScrapeUser(context.Background(), "somecreator", 10)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 2, second.Collected)
	assert.Equal(t, 2, second.Written)

	assert.Equal(t, 2, client.callCount("user_videos"))
}

func TestCacheFallbackTruncatesToCount(t *testing.T) {
	client := newFakeClient()
	client.script = [][]tiktok.Item{
		{videoItem("1", "a"), videoItem("2", "b"), videoItem("3", "c")},
		{},
	}
	s := newTestScraper(t, client)

	_, err := s.ScrapeUser(context.Background(), "somecreator", 10)
	require.NoError(t, err)

	res, err := s.ScrapeUser(context.Background(), "somecreator", 2)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, 2, res.Collected)
}

func TestCacheDisabled(t *testing.T) {
	client := newFakeClient()
	client.script = [][]tiktok.Item{
		{videoItem("1", "a")},
		{},
	}

	ui.SetQuietMode(true)
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.Notifications.NotificationType = "none"
	cfg.Cache.Enabled = false

	manager, err := storage.NewManager(cfg.Output.BaseDirectory)
	require.NoError(t, err)
	s := NewWithClient(cfg, client, manager)

	_, err = s.ScrapeUser(context.Background(), "somecreator", 10)
	require.NoError(t, err)

	res, err := s.ScrapeUser(context.Background(), "somecreator", 10)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 0, res.Collected)
	// The table keeps the first run's row regardless
	assert.Equal(t, 1, res.Written)
}

func TestScrapeUserInfoNoFallback(t *testing.T) {
	client := newFakeClient()
	client.detail = tiktok.Item{
		"userInfo": map[string]interface{}{
			"user": map[string]interface{}{
				"id":       "u100",
				"uniqueId": "somecreator",
				"nickname": "Some Creator",
			},
		},
	}
	s := newTestScraper(t, client)

	first, err := s.ScrapeUserInfo(context.Background(), "somecreator")
	require.NoError(t, err)
	assert.Equal(t, "@somecreator_user_info.csv", first.File)
	assert.Equal(t, 1, first.Written)

	// Detail refetches never fall back to the cache
	client.mu.Lock()
	client.detail = nil
	client.mu.Unlock()

	second, err := s.ScrapeUserInfo(context.Background(), "somecreator")
	require.NoError(t, err)
	assert.False(t, second.FromCache)
	assert.Equal(t, 0, second.Collected)
	// The prior row survives the empty rewrite
	assert.Equal(t, 1, second.Written)

	_, rows, err := s.Storage().ReadTable(first.File)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "somecreator", rows[0]["uniqueId"])
}

func TestScrapeCommentsFillsVideoID(t *testing.T) {
	client := newFakeClient(
		tiktok.Item{"cid": "c1", "text": "nice"},
		tiktok.Item{"cid": "c2", "text": "wow"},
	)
	s := newTestScraper(t, client)

	res, err := s.ScrapeComments(context.Background(), "https://www.tiktok.com/@x/video/7301234567890123456", 10)
	require.NoError(t, err)

	assert.Equal(t, "7301234567890123456", res.Target)
	assert.Equal(t, "comments_7301234567890123456.csv", res.File)

	_, rows, err := s.Storage().ReadTable(res.File)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Reply payloads omit aweme_id; the requested video fills it in
	assert.Equal(t, "7301234567890123456", rows[0]["aweme_id"])
	assert.Equal(t, "nice", rows[0]["text"])
}

func TestAcquisitionErrorAbsorbed(t *testing.T) {
	client := newFakeClient()
	client.err = fmt.Errorf("listing blocked")
	s := newTestScraper(t, client)

	res, err := s.ScrapeTrending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Collected)
	assert.Equal(t, 0, res.Written)
	assert.Equal(t, "foryou.csv", res.File)
}

func TestContextCancellationPropagates(t *testing.T) {
	client := newFakeClient(videoItem("1", "a"))
	s := newTestScraper(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.ScrapeUser(ctx, "somecreator", 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)

	// The aborted attempt still lands in the run report
	assert.Equal(t, 1, s.report.Len())
}

func TestOperationFiles(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		kind string
		file string
		run  func(s *Scraper) (*Result, error)
	}{
		{"user_videos", "@somecreator.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeUser(ctx, "somecreator", 5)
		}},
		{"user_detail", "@somecreator_user_info.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeUserInfo(ctx, "somecreator")
		}},
		{"user_liked", "liked_somecreator.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeLiked(ctx, "somecreator", 5)
		}},
		{"user_playlists", "user_playlists_somecreator.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeUserPlaylists(ctx, "somecreator", 5)
		}},
		{"hashtag_videos", "tag_cats.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeHashtag(ctx, "#cats", 5)
		}},
		{"video_comments", "comments_123.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeComments(ctx, "123", 5)
		}},
		{"comment_replies", "replies_c9.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeReplies(ctx, "123", "c9", 5)
		}},
		{"related_videos", "related_123.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeRelated(ctx, "123", 5)
		}},
		{"trending", "foryou.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeTrending(ctx, 5)
		}},
		{"search_videos", "search_funny_dogs.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeSearch(ctx, "funny dogs", 5)
		}},
		{"search_users", "search_user_alice.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeSearchUsers(ctx, "alice", 5)
		}},
		{"search_general", "search_general_alice.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeSearchGeneral(ctx, "alice", 5)
		}},
		{"sound_videos", "music_7016547803243022337.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeSound(ctx, "7016547803243022337", 5)
		}},
		{"sound_detail", "music_7016547803243022337_info.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapeSoundInfo(ctx, "7016547803243022337")
		}},
		{"playlist_videos", "playlist_6948562373594532614.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapePlaylist(ctx, "6948562373594532614", 5)
		}},
		{"playlist_detail", "playlist_6948562373594532614_info.csv", func(s *Scraper) (*Result, error) {
			return s.ScrapePlaylistInfo(ctx, "6948562373594532614")
		}},
	}

	client := newFakeClient(tiktok.Item{"id": "1", "cid": "c1", "mixId": "m1"})
	client.detail = tiktok.Item{"id": "d1", "title": "thing"}
	s := newTestScraper(t, client)

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			res, err := tt.run(s)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.file, res.File)

			_, err = os.Stat(s.Storage().Path(tt.file))
			assert.NoError(t, err, "table file should exist")
		})
	}

	assert.Equal(t, len(tests), s.report.Len())
}

func TestCloseWritesReport(t *testing.T) {
	client := newFakeClient(videoItem("1", "a"))
	s := newTestScraper(t, client)

	_, err := s.ScrapeUser(context.Background(), "somecreator", 5)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	path := s.Storage().Path("report.json")
	report, err := LoadReport(path)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.FinishedAt.IsZero())
	require.Len(t, report.Operations, 1)
	assert.Equal(t, "user_videos", report.Operations[0].Kind)
	assert.Equal(t, 1, report.Operations[0].Written)
}

func TestPacingDelaysSecondCall(t *testing.T) {
	client := newFakeClient(videoItem("1", "a"))

	ui.SetQuietMode(true)
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.Notifications.NotificationType = "none"
	cfg.RateLimit.RequestsPerMinute = 600
	cfg.RateLimit.BurstSize = 1

	manager, err := storage.NewManager(cfg.Output.BaseDirectory)
	require.NoError(t, err)
	s := NewWithClient(cfg, client, manager)

	start := time.Now()
	_, err = s.ScrapeTrending(context.Background(), 5)
	require.NoError(t, err)
	_, err = s.ScrapeTrending(context.Background(), 5)
	require.NoError(t, err)

	// The second call has to wait for the bucket to refill
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

package integration

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"sync"

	"tokscraper/pkg/tiktok"
)

// MockTikTokClient is a scripted stand-in for the browser-backed client.
// Each listing method pops the next scripted page; the last page sticks, so
// scripting [items, empty] yields items once and empty ever after. Every
// call is counted so tests can assert how often the pipeline went upstream.
type MockTikTokClient struct {
	mu      sync.Mutex
	pages   map[string][][]tiktok.Item
	details map[string][]tiktok.Item
	errs    map[string]error
	calls   map[string]int
}

// NewMockTikTokClient creates an empty scripted client. Unscripted methods
// return no items and no error, the same shape a dry endpoint produces.
func NewMockTikTokClient() *MockTikTokClient {
	return &MockTikTokClient{
		pages:   make(map[string][][]tiktok.Item),
		details: make(map[string][]tiktok.Item),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

// Script queues listing responses for a method, in call order.
func (c *MockTikTokClient) Script(method string, pages ...[]tiktok.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[method] = append(c.pages[method], pages...)
}

// ScriptDetail queues single-object responses for a detail method.
func (c *MockTikTokClient) ScriptDetail(method string, items ...tiktok.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details[method] = append(c.details[method], items...)
}

// FailWith makes a method return the given error on every call until cleared
// with FailWith(method, nil).
func (c *MockTikTokClient) FailWith(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.errs, method)
		return
	}
	c.errs[method] = err
}

// CallCount reports how many times a method was invoked.
func (c *MockTikTokClient) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *MockTikTokClient) listing(ctx context.Context, method string) ([]tiktok.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++

	if err := c.errs[method]; err != nil {
		return nil, err
	}

	queue := c.pages[method]
	if len(queue) == 0 {
		return nil, nil
	}
	page := queue[0]
	if len(queue) > 1 {
		c.pages[method] = queue[1:]
	}
	return page, nil
}

func (c *MockTikTokClient) detail(ctx context.Context, method string) (tiktok.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++

	if err := c.errs[method]; err != nil {
		return nil, err
	}

	queue := c.details[method]
	if len(queue) == 0 {
		return nil, nil
	}
	item := queue[0]
	if len(queue) > 1 {
		c.details[method] = queue[1:]
	}
	return item, nil
}

func (c *MockTikTokClient) UserDetail(ctx context.Context, username string) (tiktok.Item, error) {
	return c.detail(ctx, "UserDetail")
}

func (c *MockTikTokClient) UserVideos(ctx context.Context, username string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "UserVideos")
}

func (c *MockTikTokClient) UserLiked(ctx context.Context, username string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "UserLiked")
}

func (c *MockTikTokClient) UserPlaylists(ctx context.Context, username string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "UserPlaylists")
}

func (c *MockTikTokClient) HashtagDetail(ctx context.Context, tag string) (tiktok.Item, error) {
	return c.detail(ctx, "HashtagDetail")
}

func (c *MockTikTokClient) HashtagVideos(ctx context.Context, tag string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "HashtagVideos")
}

func (c *MockTikTokClient) VideoComments(ctx context.Context, videoRef string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "VideoComments")
}

func (c *MockTikTokClient) CommentReplies(ctx context.Context, videoRef, commentID string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "CommentReplies")
}

func (c *MockTikTokClient) RelatedVideos(ctx context.Context, videoRef string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "RelatedVideos")
}

func (c *MockTikTokClient) Trending(ctx context.Context, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "Trending")
}

func (c *MockTikTokClient) SearchVideos(ctx context.Context, keyword string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "SearchVideos")
}

func (c *MockTikTokClient) SearchUsers(ctx context.Context, keyword string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "SearchUsers")
}

func (c *MockTikTokClient) SearchGeneral(ctx context.Context, keyword string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "SearchGeneral")
}

func (c *MockTikTokClient) SoundDetail(ctx context.Context, soundID string) (tiktok.Item, error) {
	return c.detail(ctx, "SoundDetail")
}

func (c *MockTikTokClient) SoundVideos(ctx context.Context, soundID string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "SoundVideos")
}

func (c *MockTikTokClient) PlaylistDetail(ctx context.Context, playlistID string) (tiktok.Item, error) {
	return c.detail(ctx, "PlaylistDetail")
}

func (c *MockTikTokClient) PlaylistVideos(ctx context.Context, playlistID string, count int) ([]tiktok.Item, error) {
	return c.listing(ctx, "PlaylistVideos")
}

// GenerateVideoItems builds payload-shaped video items with distinct IDs.
// Numerics are json.Number, matching what the response decoder produces.
func GenerateVideoItems(count int, prefix string) []tiktok.Item {
	items := make([]tiktok.Item, count)
	for i := 0; i < count; i++ {
		items[i] = tiktok.Item{
			"id":         fmt.Sprintf("%s%d", prefix, i),
			"createTime": stdjson.Number("1700000000"),
			"desc":       fmt.Sprintf("clip %d", i),
			"video": map[string]interface{}{
				"duration": stdjson.Number("15"),
			},
			"stats": map[string]interface{}{
				"diggCount":    stdjson.Number("120"),
				"shareCount":   stdjson.Number("4"),
				"commentCount": stdjson.Number("9"),
				"playCount":    stdjson.Number("5000"),
			},
			"author": map[string]interface{}{
				"uniqueId": "stuntfan",
				"nickname": "Stunt Fan",
				"verified": false,
			},
			"authorStats": map[string]interface{}{
				"followerCount":  stdjson.Number("1200"),
				"followingCount": stdjson.Number("80"),
				"heartCount":     stdjson.Number("34000"),
				"videoCount":     stdjson.Number("42"),
				"diggCount":      stdjson.Number("150"),
			},
		}
	}
	return items
}

// GenerateCommentItems builds payload-shaped comment items.
func GenerateCommentItems(count int, videoID string) []tiktok.Item {
	items := make([]tiktok.Item, count)
	for i := 0; i < count; i++ {
		items[i] = tiktok.Item{
			"cid":        fmt.Sprintf("c%d", i),
			"aweme_id":   videoID,
			"text":       fmt.Sprintf("comment %d", i),
			"digg_count": stdjson.Number("3"),
			"status":     stdjson.Number("1"),
			"user": map[string]interface{}{
				"uid":       stdjson.Number(fmt.Sprintf("%d", 100+i)),
				"unique_id": fmt.Sprintf("commenter%d", i),
				"nickname":  fmt.Sprintf("Commenter %d", i),
			},
		}
	}
	return items
}

// GenerateUserDetail builds a userInfo-shaped detail payload.
func GenerateUserDetail(username string) tiktok.Item {
	return tiktok.Item{
		"userInfo": map[string]interface{}{
			"user": map[string]interface{}{
				"id":        stdjson.Number("987654321"),
				"uniqueId":  username,
				"nickname":  "Test User",
				"verified":  true,
				"signature": "test account",
			},
			"stats": map[string]interface{}{
				"followerCount": stdjson.Number("1200"),
			},
		},
	}
}

package tiktok

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tokscraper/pkg/browser"
	"tokscraper/pkg/config"
	errs "tokscraper/pkg/errors"
	"tokscraper/pkg/logger"
)

// webSearchCode is the web client descriptor the general search
// endpoint requires. Attached verbatim; the site rejects calls
// without it.
const webSearchCode = `{"tiktok":{"client_params_x":{"search_engine":{"ies_mt_user_live_video_card_use_libra":1,"mt_search_general_user_live_card":1}},"search_server":{}}}`

// Client exposes the hidden endpoint operations over one execution
// context. Detail lookups return a single record; listings return up
// to the requested count, partial when the endpoint stops cooperating.
//
// Not safe for concurrent use. Batch workers each build their own.
type Client struct {
	runner browser.Runner
	cfg    *config.Config
	log    logger.Logger
	engine *engine

	// secUIDs memoizes username -> secUid so listings do not repeat
	// the profile lookup
	secUIDs map[string]string
}

// NewClient creates a client bound to a live execution context.
func NewClient(runner browser.Runner, cfg *config.Config, log logger.Logger) *Client {
	return &Client{
		runner:  runner,
		cfg:     cfg,
		log:     log,
		engine:  newEngine(runner, cfg, log),
		secUIDs: make(map[string]string),
	}
}

func (c *Client) baseURL() string {
	return strings.TrimRight(c.cfg.TikTok.BaseURL, "/")
}

// visit navigates somewhere useful before a call without letting a
// slow page kill the operation.
func (c *Client) visit(ctx context.Context, url string) {
	if err := c.runner.Navigate(ctx, url); err != nil {
		c.log.WarnWithFields("warm visit had issues (continuing anyway)", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}
}

// UserDetail fetches a user's profile record. The profile page is
// visited first so the call originates from a plausible place.
func (c *Client) UserDetail(ctx context.Context, username string) (Item, error) {
	username = NormalizeUsername(username)
	c.visit(ctx, c.baseURL()+"/@"+username)

	payload, err := c.engine.Fetch(ctx, endpoints[EndpointUserDetail], map[string]string{
		"uniqueId": username,
		"secUid":   "",
	})
	if err != nil {
		return nil, err
	}
	return Item(payload), nil
}

// SecUID resolves a username to the opaque id the listing endpoints
// key on. Resolved values are memoized for the client's lifetime.
func (c *Client) SecUID(ctx context.Context, username string) (string, error) {
	username = NormalizeUsername(username)
	if id, ok := c.secUIDs[username]; ok {
		return id, nil
	}

	detail, err := c.UserDetail(ctx, username)
	if err != nil {
		return "", err
	}
	id := detail.Str("userInfo", "user", "secUid")
	if id == "" {
		return "", &errs.Error{
			Type:    errs.ErrorTypeEndpoint,
			Message: fmt.Sprintf("user detail for %q carries no secUid", username),
		}
	}
	c.secUIDs[username] = id
	return id, nil
}

// UserVideos collects a user's posted videos, newest first.
func (c *Client) UserVideos(ctx context.Context, username string, count int) ([]Item, error) {
	return c.userListing(ctx, EndpointUserVideos, username, count)
}

// UserLiked collects the videos a user has liked. Only works for
// accounts that expose their liked list.
func (c *Client) UserLiked(ctx context.Context, username string, count int) ([]Item, error) {
	return c.userListing(ctx, EndpointUserLiked, username, count)
}

// UserPlaylists collects the playlists on a user's profile.
func (c *Client) UserPlaylists(ctx context.Context, username string, count int) ([]Item, error) {
	return c.userListing(ctx, EndpointUserPlaylists, username, count)
}

func (c *Client) userListing(ctx context.Context, endpointKey, username string, count int) ([]Item, error) {
	username = NormalizeUsername(username)
	secUID, err := c.SecUID(ctx, username)
	if err != nil {
		return nil, err
	}
	return c.engine.paginate(ctx, listing{
		ep:        endpoints[endpointKey],
		params:    map[string]string{"secUid": secUID},
		want:      count,
		target:    "@" + username,
		rewarmURL: c.baseURL() + "/@" + username,
	})
}

// HashtagDetail fetches a hashtag's challenge record.
func (c *Client) HashtagDetail(ctx context.Context, tag string) (Item, error) {
	tag = NormalizeHashtag(tag)
	payload, err := c.engine.Fetch(ctx, endpoints[EndpointHashtagDetail], map[string]string{
		"challengeName": tag,
	})
	if err != nil {
		return nil, err
	}
	return Item(payload), nil
}

// HashtagVideos collects videos posted under a hashtag. The listing
// endpoint blocks aggressively; when it does, search results for the
// tag stand in, labelled with their source.
func (c *Client) HashtagVideos(ctx context.Context, tag string, count int) ([]Item, error) {
	tag = NormalizeHashtag(tag)
	if count <= 0 {
		count = c.cfg.Acquisition.DefaultCount
	}

	detail, err := c.HashtagDetail(ctx, tag)
	if err != nil {
		return nil, err
	}
	challengeID := detail.Str("challengeInfo", "challenge", "id")
	if challengeID == "" {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeEndpoint,
			Message: fmt.Sprintf("challenge detail for %q carries no id", tag),
		}
	}

	items, err := c.engine.paginate(ctx, listing{
		ep: endpoints[EndpointHashtagVideos],
		params: map[string]string{
			"challengeID":   challengeID,
			"challengeName": tag,
		},
		want:      count,
		target:    "#" + tag,
		rewarmURL: c.baseURL() + "/tag/" + tag,
	})
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, errListingBlocked) {
		return items, err
	}

	// Blocked outright. Search is noisier but rarely blocked, so its
	// results stand in for the listing.
	searchFallbacksTotal.Inc()
	logger.LogFallback(tag, "#"+tag)
	fallback, ferr := c.SearchGeneral(ctx, "#"+tag, count)
	if ferr != nil {
		if ctx.Err() != nil {
			return items, ferr
		}
		c.log.WarnWithFields("search fallback had issues", map[string]interface{}{
			"tag":   tag,
			"error": ferr.Error(),
		})
	}
	if len(fallback) == 0 {
		logger.LogFallback(tag, tag)
		fallback, ferr = c.SearchGeneral(ctx, tag, count)
		if ferr != nil {
			if ctx.Err() != nil {
				return items, ferr
			}
			c.log.WarnWithFields("search fallback had issues", map[string]interface{}{
				"tag":   tag,
				"error": ferr.Error(),
			})
		}
	}

	for _, it := range fallback {
		if _, ok := it["source"]; !ok {
			it["source"] = "search_fallback"
		}
	}
	items = append(items, fallback...)
	if len(items) > count {
		items = items[:count]
	}
	return items, nil
}

// VideoComments collects top-level comments on a video. Accepts a
// share URL or a bare video id.
func (c *Client) VideoComments(ctx context.Context, videoRef string, count int) ([]Item, error) {
	videoID := ExtractVideoID(videoRef)
	return c.engine.paginate(ctx, listing{
		ep:     endpoints[EndpointVideoComments],
		params: map[string]string{"aweme_id": videoID},
		want:   count,
		target: videoID,
	})
}

// CommentReplies collects the replies under one comment.
func (c *Client) CommentReplies(ctx context.Context, videoRef, commentID string, count int) ([]Item, error) {
	videoID := ExtractVideoID(videoRef)
	return c.engine.paginate(ctx, listing{
		ep: endpoints[EndpointCommentReplies],
		params: map[string]string{
			"comment_id": commentID,
			"item_id":    videoID,
		},
		want:   count,
		target: commentID,
	})
}

// RelatedVideos collects videos the site relates to the given one.
// The endpoint takes the full count in one call rather than paging.
func (c *Client) RelatedVideos(ctx context.Context, videoRef string, count int) ([]Item, error) {
	if strings.Contains(videoRef, "tiktok.com") {
		// Calling from the video's own page keeps the endpoint happy
		c.visit(ctx, videoRef)
	}
	videoID := ExtractVideoID(videoRef)
	return c.listOnce(ctx, endpoints[EndpointRelatedVideos], map[string]string{
		"itemID": videoID,
	}, count)
}

// Trending collects the logged-out For You feed. Content rotates per
// session identity, so repeated runs yield different sets.
func (c *Client) Trending(ctx context.Context, count int) ([]Item, error) {
	return c.listOnce(ctx, endpoints[EndpointTrending], map[string]string{}, count)
}

// SearchVideos collects video results for a keyword.
func (c *Client) SearchVideos(ctx context.Context, keyword string, count int) ([]Item, error) {
	return c.engine.paginate(ctx, listing{
		ep:     endpoints[EndpointSearchItems],
		params: map[string]string{"keyword": keyword},
		want:   count,
		target: keyword,
	})
}

// SearchUsers collects user results for a keyword.
func (c *Client) SearchUsers(ctx context.Context, keyword string, count int) ([]Item, error) {
	return c.engine.paginate(ctx, listing{
		ep:     endpoints[EndpointSearchUsers],
		params: map[string]string{"keyword": keyword},
		want:   count,
		target: keyword,
	})
}

// SearchGeneral collects mixed search results for a keyword, unwrapped
// to their inner records.
func (c *Client) SearchGeneral(ctx context.Context, keyword string, count int) ([]Item, error) {
	return c.engine.paginate(ctx, listing{
		ep: endpoints[EndpointSearchGeneral],
		params: map[string]string{
			"keyword":         keyword,
			"web_search_code": webSearchCode,
		},
		want:   count,
		target: keyword,
	})
}

// SoundDetail fetches a sound's record.
func (c *Client) SoundDetail(ctx context.Context, soundID string) (Item, error) {
	payload, err := c.engine.Fetch(ctx, endpoints[EndpointSoundDetail], map[string]string{
		"musicId": soundID,
	})
	if err != nil {
		return nil, err
	}
	return Item(payload), nil
}

// SoundVideos collects videos using a sound.
func (c *Client) SoundVideos(ctx context.Context, soundID string, count int) ([]Item, error) {
	return c.engine.paginate(ctx, listing{
		ep:     endpoints[EndpointSoundVideos],
		params: map[string]string{"musicID": soundID},
		want:   count,
		target: soundID,
	})
}

// PlaylistDetail fetches a playlist's record.
func (c *Client) PlaylistDetail(ctx context.Context, playlistID string) (Item, error) {
	payload, err := c.engine.Fetch(ctx, endpoints[EndpointPlaylistDetail], map[string]string{
		"mixId": playlistID,
	})
	if err != nil {
		return nil, err
	}
	return Item(payload), nil
}

// PlaylistVideos collects the videos in a playlist.
func (c *Client) PlaylistVideos(ctx context.Context, playlistID string, count int) ([]Item, error) {
	return c.engine.paginate(ctx, listing{
		ep:     endpoints[EndpointPlaylistVideos],
		params: map[string]string{"mixId": playlistID},
		want:   count,
		target: playlistID,
	})
}

// listOnce handles the endpoints that take the whole count in a single
// call instead of paging.
func (c *Client) listOnce(ctx context.Context, ep Endpoint, params map[string]string, count int) ([]Item, error) {
	if count <= 0 {
		count = c.cfg.Acquisition.DefaultCount
	}

	overrides := make(map[string]string, len(params)+1)
	for k, v := range params {
		overrides[k] = v
	}
	overrides["count"] = strconv.Itoa(count)

	payload, err := c.engine.Fetch(ctx, ep, overrides)
	if err != nil {
		return nil, err
	}

	items := extractItems(ep, payload)
	if len(items) > count {
		items = items[:count]
	}
	return items, nil
}

package tiktok

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Logical endpoint keys. They double as cache key prefixes and metric
// labels, so they must stay stable.
const (
	EndpointUserDetail     = "user_detail"
	EndpointUserVideos     = "user_videos"
	EndpointUserLiked      = "user_liked"
	EndpointUserPlaylists  = "user_playlists"
	EndpointHashtagDetail  = "hashtag_detail"
	EndpointHashtagVideos  = "hashtag_videos"
	EndpointVideoComments  = "video_comments"
	EndpointCommentReplies = "comment_replies"
	EndpointRelatedVideos  = "related_videos"
	EndpointTrending       = "trending"
	EndpointSearchItems    = "search_items"
	EndpointSearchUsers    = "search_users"
	EndpointSearchGeneral  = "search_general"
	EndpointSoundDetail    = "sound_detail"
	EndpointSoundVideos    = "sound_videos"
	EndpointPlaylistDetail = "playlist_detail"
	EndpointPlaylistVideos = "playlist_videos"
)

// hardBlockCode is the status the hashtag listing reports when the
// session identity is rejected outright rather than rate limited.
const hardBlockCode = 100002

// FailurePolicy selects how a listing reacts when a whole page of it
// fails after the per-call retry budget is spent.
type FailurePolicy int

const (
	// PolicyPartial returns whatever was accumulated so far.
	PolicyPartial FailurePolicy = iota
	// PolicyRewarm invalidates session parameters and restarts the
	// execution context between failed pages, up to a cap.
	PolicyRewarm
	// PolicyFallback re-warms between failed pages and, once the cap
	// is reached, tells the caller to substitute a search query.
	PolicyFallback
)

// Endpoint describes one hidden JSON endpoint: where it lives, what a
// good payload looks like, and how its listing paginates. Keeping the
// per-endpoint quirks in this table keeps the engine endpoint-agnostic.
type Endpoint struct {
	// Key is the logical name used in logs, metrics and cache keys
	Key string
	// Path is appended to the web base URL
	Path string
	// SuccessKeys mark a payload good even without a zero status code
	SuccessKeys []string
	// ListKeys name the arrays page items are read from, in order
	ListKeys []string
	// UnwrapKeys, when set, name the field holding the real record
	// inside each list entry (search responses nest one level down)
	UnwrapKeys []string
	// PageSize is the count requested per page
	PageSize int
	// FromPage overrides the session default origin hint
	FromPage string
	// Policy picks the listing failure behavior
	Policy FailurePolicy
	// BlockCode is the status treated as a permanent block, 0 if none
	BlockCode int
}

// endpoints is the full descriptor table. Paths and field names come
// straight from the tiktok.com web app's own traffic.
var endpoints = map[string]Endpoint{
	EndpointUserDetail: {
		Key:         EndpointUserDetail,
		Path:        "/api/user/detail/",
		SuccessKeys: []string{"userInfo"},
	},
	EndpointUserVideos: {
		Key:         EndpointUserVideos,
		Path:        "/api/post/item_list/",
		SuccessKeys: []string{"itemList"},
		ListKeys:    []string{"itemList"},
		PageSize:    35,
		Policy:      PolicyRewarm,
	},
	EndpointUserLiked: {
		Key:         EndpointUserLiked,
		Path:        "/api/favorite/item_list/",
		SuccessKeys: []string{"itemList"},
		ListKeys:    []string{"itemList"},
		PageSize:    35,
		Policy:      PolicyRewarm,
	},
	EndpointUserPlaylists: {
		Key:         EndpointUserPlaylists,
		Path:        "/api/user/playlist",
		SuccessKeys: []string{"playList", "itemList"},
		ListKeys:    []string{"playList", "itemList"},
		PageSize:    35,
	},
	EndpointHashtagDetail: {
		Key:         EndpointHashtagDetail,
		Path:        "/api/challenge/detail/",
		SuccessKeys: []string{"challengeInfo"},
		FromPage:    "challenge",
	},
	EndpointHashtagVideos: {
		Key:         EndpointHashtagVideos,
		Path:        "/api/challenge/item_list/",
		SuccessKeys: []string{"itemList"},
		ListKeys:    []string{"itemList"},
		PageSize:    35,
		FromPage:    "challenge",
		Policy:      PolicyFallback,
		BlockCode:   hardBlockCode,
	},
	EndpointVideoComments: {
		Key:         EndpointVideoComments,
		Path:        "/api/comment/list/",
		SuccessKeys: []string{"comments"},
		ListKeys:    []string{"comments"},
		PageSize:    20,
		FromPage:    "video",
	},
	EndpointCommentReplies: {
		Key:         EndpointCommentReplies,
		Path:        "/api/comment/list/reply/",
		SuccessKeys: []string{"comments"},
		ListKeys:    []string{"comments"},
		PageSize:    20,
		FromPage:    "video",
	},
	EndpointRelatedVideos: {
		Key:         EndpointRelatedVideos,
		Path:        "/api/related/item_list/",
		SuccessKeys: []string{"itemList"},
		ListKeys:    []string{"itemList"},
		PageSize:    35,
		FromPage:    "video",
	},
	EndpointTrending: {
		Key:         EndpointTrending,
		Path:        "/api/recommend/item_list/",
		SuccessKeys: []string{"itemList"},
		ListKeys:    []string{"itemList"},
		PageSize:    35,
		FromPage:    "fyp",
	},
	EndpointSearchItems: {
		Key:         EndpointSearchItems,
		Path:        "/api/search/item/full/",
		SuccessKeys: []string{"item_list", "itemList", "data"},
		ListKeys:    []string{"item_list", "itemList", "data"},
		PageSize:    30,
		FromPage:    "search",
	},
	EndpointSearchUsers: {
		Key:         EndpointSearchUsers,
		Path:        "/api/search/user/full/",
		SuccessKeys: []string{"user_list"},
		ListKeys:    []string{"user_list"},
		UnwrapKeys:  []string{"user_info"},
		PageSize:    30,
		FromPage:    "search",
	},
	EndpointSearchGeneral: {
		Key:         EndpointSearchGeneral,
		Path:        "/api/search/general/full/",
		SuccessKeys: []string{"data", "item_list", "itemList"},
		ListKeys:    []string{"item_list", "itemList", "data"},
		UnwrapKeys:  []string{"item", "item_info", "itemInfo"},
		PageSize:    30,
		FromPage:    "search",
	},
	EndpointSoundDetail: {
		Key:         EndpointSoundDetail,
		Path:        "/api/music/detail/",
		SuccessKeys: []string{"musicInfo", "music"},
	},
	EndpointSoundVideos: {
		Key:         EndpointSoundVideos,
		Path:        "/api/music/item_list/",
		SuccessKeys: []string{"itemList"},
		ListKeys:    []string{"itemList"},
		PageSize:    30,
	},
	EndpointPlaylistDetail: {
		Key:         EndpointPlaylistDetail,
		Path:        "/api/mix/detail/",
		SuccessKeys: []string{"mixInfo", "mix"},
	},
	EndpointPlaylistVideos: {
		Key:         EndpointPlaylistVideos,
		Path:        "/api/mix/item_list/",
		SuccessKeys: []string{"itemList"},
		ListKeys:    []string{"itemList"},
		PageSize:    30,
	},
}

// EndpointFor looks up a descriptor by its logical key. An unknown key
// is a programmer error, not a runtime condition.
func EndpointFor(key string) (Endpoint, error) {
	ep, ok := endpoints[key]
	if !ok {
		return Endpoint{}, fmt.Errorf("unknown endpoint %q", key)
	}
	return ep, nil
}

// BuildURL assembles the full request URL for an endpoint call.
func BuildURL(baseURL string, ep Endpoint, params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return strings.TrimRight(baseURL, "/") + ep.Path + "?" + values.Encode()
}

var videoIDPattern = regexp.MustCompile(`/video/(\d+)`)

// NormalizeUsername strips decoration from a handle.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

// NormalizeHashtag strips decoration from a tag name.
func NormalizeHashtag(tag string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// ExtractVideoID pulls the numeric video ID out of a share URL, or
// returns the input unchanged when it is already a bare ID.
func ExtractVideoID(ref string) string {
	if m := videoIDPattern.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	return strings.TrimSpace(ref)
}

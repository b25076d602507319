package scraper

import (
	stdjson "encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"tokscraper/pkg/storage"
	"tokscraper/pkg/tiktok"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RowMapper converts raw payload items into flat CSV rows. Implementations
// decide which fields survive; nested structures beyond what a mapper names
// explicitly are not flattened.
type RowMapper interface {
	// Rows maps a batch of items, returning the rows and their preferred
	// column order.
	Rows(items []tiktok.Item) ([]storage.Row, []string)
	// KeyField names the column MergeWrite de-duplicates on. An empty name
	// means the batch carries no stable key and duplicates are kept.
	KeyField(rows []storage.Row) string
}

// videoColumns is the classic per-video export layout.
var videoColumns = []string{
	"video_id", "video_timestamp", "video_duration", "video_locationcreated",
	"video_diggcount", "video_sharecount", "video_commentcount", "video_playcount",
	"video_description", "video_is_ad", "video_stickers",
	"author_username", "author_name",
	"author_followercount", "author_followingcount", "author_heartcount",
	"author_videocount", "author_diggcount", "author_verified",
	"poi_name", "poi_address", "poi_city",
}

// VideoMapper flattens video objects into the fixed listing layout.
type VideoMapper struct{}

func (VideoMapper) Rows(items []tiktok.Item) ([]storage.Row, []string) {
	rows := make([]storage.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, videoRow(it))
	}
	return rows, videoColumns
}

func (VideoMapper) KeyField([]storage.Row) string { return "video_id" }

func videoRow(it tiktok.Item) storage.Row {
	return storage.Row{
		"video_id":              it.Str("id"),
		"video_timestamp":       isoTimestamp(it.Str("createTime")),
		"video_duration":        it.Str("video", "duration"),
		"video_locationcreated": it.Str("locationCreated"),
		"video_diggcount":       it.Str("stats", "diggCount"),
		"video_sharecount":      it.Str("stats", "shareCount"),
		"video_commentcount":    it.Str("stats", "commentCount"),
		"video_playcount":       it.Str("stats", "playCount"),
		"video_description":     it.Str("desc"),
		"video_is_ad":           it.Str("isAd"),
		"video_stickers":        stickerText(it),
		"author_username":       it.Str("author", "uniqueId"),
		"author_name":           it.Str("author", "nickname"),
		"author_followercount":  it.Str("authorStats", "followerCount"),
		"author_followingcount": it.Str("authorStats", "followingCount"),
		"author_heartcount":     it.Str("authorStats", "heartCount"),
		"author_videocount":     it.Str("authorStats", "videoCount"),
		"author_diggcount":      it.Str("authorStats", "diggCount"),
		"author_verified":       it.Str("author", "verified"),
		"poi_name":              it.Str("poi", "name"),
		"poi_address":           it.Str("poi", "address"),
		"poi_city":              it.Str("poi", "city"),
	}
}

// isoTimestamp renders a unix-seconds value as a local ISO-8601 instant.
func isoTimestamp(unixStr string) string {
	sec, err := strconv.ParseInt(strings.TrimSpace(unixStr), 10, 64)
	if err != nil || sec <= 0 {
		return ""
	}
	return time.Unix(sec, 0).Format("2006-01-02T15:04:05")
}

// stickerText joins every sticker caption on a video with semicolons.
func stickerText(it tiktok.Item) string {
	var parts []string
	stickers, _ := it["stickersOnItem"].([]interface{})
	for _, entry := range stickers {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		texts, _ := m["stickerText"].([]interface{})
		for _, t := range texts {
			if s, ok := t.(string); ok {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, ";")
}

// commentColumns is the rich comment export layout.
var commentColumns = []string{
	"allow_download_photo", "author_pin", "aweme_id", "cid", "collect_stat",
	"comment_language", "comment_post_item_ids", "create_time", "digg_count",
	"image_list", "is_author_digged", "is_comment_translatable",
	"is_high_purchase_intent", "label_list", "no_show", "reply_comment",
	"reply_comment_total", "reply_id", "reply_to_reply_id", "share_info",
	"sort_extra_score", "sort_tags", "status", "stick_position", "text",
	"text_extra", "trans_btn_style", "user", "user_buried", "user_digged",
	"user_unique_id", "user_nickname", "user_uid",
}

// CommentMapper flattens comment objects, stamping each row with the video
// it belongs to when the payload omits it.
type CommentMapper struct {
	AwemeID string
}

func (m CommentMapper) Rows(items []tiktok.Item) ([]storage.Row, []string) {
	rows := make([]storage.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, m.commentRow(it))
	}
	return rows, commentColumns
}

func (CommentMapper) KeyField([]storage.Row) string { return "cid" }

func (m CommentMapper) commentRow(it tiktok.Item) storage.Row {
	row := make(storage.Row, len(commentColumns))
	for _, col := range commentColumns {
		row[col] = cellString(it[col])
	}
	if row["aweme_id"] == "" {
		row["aweme_id"] = m.AwemeID
	}
	row["user_unique_id"] = it.Str("user", "unique_id")
	row["user_nickname"] = it.Str("user", "nickname")
	row["user_uid"] = it.Str("user", "uid")
	return row
}

// GenericMapper keeps the top-level scalar fields of each item. An optional
// unwrap chain descends into the first nested object that resolves, which is
// how detail payloads (userInfo.user, musicInfo.music, mixInfo) become
// useful rows without a general flattener. The dedup column comes from a
// fallback chain checked against the produced rows.
type GenericMapper struct {
	Unwraps  [][]string
	KeyChain []string
}

func (m GenericMapper) Rows(items []tiktok.Item) ([]storage.Row, []string) {
	rows := make([]storage.Row, 0, len(items))
	seen := make(map[string]bool)
	for _, it := range items {
		src := it
		for _, path := range m.Unwraps {
			if inner := it.Map(path...); len(inner) > 0 {
				src = inner
				break
			}
		}
		row := storage.Row{}
		for field, value := range src {
			if s, ok := scalarString(value); ok {
				row[field] = s
				seen[field] = true
			}
		}
		rows = append(rows, row)
	}

	columns := make([]string, 0, len(seen))
	for field := range seen {
		columns = append(columns, field)
	}
	sort.Strings(columns)
	if key := m.KeyField(rows); key != "" {
		columns = frontLoad(columns, key)
	}
	return rows, columns
}

func (m GenericMapper) KeyField(rows []storage.Row) string {
	for _, key := range m.KeyChain {
		for _, row := range rows {
			if _, ok := row[key]; ok {
				return key
			}
		}
	}
	return ""
}

// frontLoad moves the dedup column to the head of the column order.
func frontLoad(columns []string, key string) []string {
	out := make([]string, 0, len(columns))
	out = append(out, key)
	for _, col := range columns {
		if col != key {
			out = append(out, col)
		}
	}
	return out
}

// Mapper presets for the info and user exports.
var (
	userInfoMapper = GenericMapper{
		Unwraps:  [][]string{{"userInfo", "user"}},
		KeyChain: []string{"id", "uniqueId", "secUid"},
	}
	searchUserMapper = GenericMapper{
		Unwraps:  [][]string{{"user"}},
		KeyChain: []string{"id", "uid", "uniqueId", "unique_id"},
	}
	soundInfoMapper = GenericMapper{
		Unwraps:  [][]string{{"musicInfo", "music"}, {"music"}},
		KeyChain: []string{"id", "title"},
	}
	playlistInfoMapper = GenericMapper{
		Unwraps:  [][]string{{"mixInfo", "mix"}, {"mixInfo"}, {"mix"}},
		KeyChain: []string{"mixId", "id", "title"},
	}
	playlistListMapper = GenericMapper{
		KeyChain: []string{"mixId", "id"},
	}
	generalMapper = GenericMapper{
		KeyChain: []string{"id", "uid", "cid"},
	}
)

// cellString renders one payload value as a CSV cell. Scalars keep their
// canonical string form; nested objects are embedded as compact JSON.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case stdjson.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case map[string]interface{}, []interface{}:
		encoded, err := json.MarshalToString(val)
		if err != nil {
			return ""
		}
		return encoded
	default:
		return fmt.Sprint(val)
	}
}

// scalarString renders v when it is a scalar, reporting whether it was one.
func scalarString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case stdjson.Number:
		return val.String(), true
	case bool:
		if val {
			return "true", true
		}
		return "false", true
	case float64, float32, int, int32, int64:
		return fmt.Sprint(val), true
	default:
		return "", false
	}
}

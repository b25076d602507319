package scraper

import (
	stdjson "encoding/json"
	"testing"
	"time"

	"tokscraper/pkg/tiktok"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoMapperRows(t *testing.T) {
	item := videoItem("7301234567890123456", "stunt compilation")
	item["locationCreated"] = "US"
	item["isAd"] = true
	item["poi"] = map[string]interface{}{
		"name":    "Venice Beach",
		"address": "1800 Ocean Front Walk",
		"city":    "Los Angeles",
	}
	item["stickersOnItem"] = []interface{}{
		map[string]interface{}{"stickerText": []interface{}{"wait for it", "part 2"}},
		map[string]interface{}{"stickerText": []interface{}{"follow me"}},
	}

	rows, columns := VideoMapper{}.Rows([]tiktok.Item{item})
	require.Len(t, rows, 1)
	assert.Equal(t, videoColumns, columns)

	row := rows[0]
	assert.Equal(t, "7301234567890123456", row["video_id"])
	assert.Equal(t, time.Unix(1700000000, 0).Format("2006-01-02T15:04:05"), row["video_timestamp"])
	assert.Equal(t, "15", row["video_duration"])
	assert.Equal(t, "US", row["video_locationcreated"])
	assert.Equal(t, "10", row["video_diggcount"])
	assert.Equal(t, "2", row["video_sharecount"])
	assert.Equal(t, "3", row["video_commentcount"])
	assert.Equal(t, "1000", row["video_playcount"])
	assert.Equal(t, "stunt compilation", row["video_description"])
	assert.Equal(t, "true", row["video_is_ad"])
	assert.Equal(t, "wait for it;part 2;follow me", row["video_stickers"])
	assert.Equal(t, "somecreator", row["author_username"])
	assert.Equal(t, "Some Creator", row["author_name"])
	assert.Equal(t, "100", row["author_followercount"])
	assert.Equal(t, "true", row["author_verified"])
	assert.Equal(t, "Venice Beach", row["poi_name"])
	assert.Equal(t, "1800 Ocean Front Walk", row["poi_address"])
	assert.Equal(t, "Los Angeles", row["poi_city"])

	assert.Equal(t, "video_id", VideoMapper{}.KeyField(rows))
}

func TestVideoMapperSparseItem(t *testing.T) {
	rows, columns := VideoMapper{}.Rows([]tiktok.Item{{"id": "42"}})
	require.Len(t, rows, 1)
	require.Len(t, columns, 22)

	row := rows[0]
	assert.Equal(t, "42", row["video_id"])
	// Everything the payload omits renders as an empty cell
	assert.Equal(t, "", row["video_timestamp"])
	assert.Equal(t, "", row["video_stickers"])
	assert.Equal(t, "", row["poi_city"])
	assert.Equal(t, "", row["author_verified"])
}

func TestIsoTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1700000000", time.Unix(1700000000, 0).Format("2006-01-02T15:04:05")},
		{" 1700000000 ", time.Unix(1700000000, 0).Format("2006-01-02T15:04:05")},
		{"0", ""},
		{"-5", ""},
		{"", ""},
		{"soon", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isoTimestamp(tt.in), "isoTimestamp(%q)", tt.in)
	}
}

func TestStickerText(t *testing.T) {
	item := tiktok.Item{
		"stickersOnItem": []interface{}{
			map[string]interface{}{"stickerText": []interface{}{"one", "two"}},
			"not an object",
			map[string]interface{}{"other": "field"},
			map[string]interface{}{"stickerText": []interface{}{"three", 7}},
		},
	}
	assert.Equal(t, "one;two;three", stickerText(item))
	assert.Equal(t, "", stickerText(tiktok.Item{}))
}

func TestCommentMapperRows(t *testing.T) {
	items := []tiktok.Item{
		{
			"cid":        "7302000000000000001",
			"aweme_id":   stdjson.Number("7301234567890123456"),
			"text":       "amazing",
			"digg_count": stdjson.Number("42"),
			"status":     stdjson.Number("1"),
			"reply_comment": map[string]interface{}{
				"cid": "child",
			},
			"text_extra": []interface{}{"mention"},
			"user": map[string]interface{}{
				"uid":       stdjson.Number("88"),
				"unique_id": "bob",
				"nickname":  "Bob",
			},
			"user_digged": stdjson.Number("0"),
		},
		{
			"cid":  "7302000000000000002",
			"text": "second",
		},
	}

	mapper := CommentMapper{AwemeID: "999"}
	rows, columns := mapper.Rows(items)
	require.Len(t, rows, 2)
	assert.Equal(t, commentColumns, columns)
	assert.Equal(t, "cid", mapper.KeyField(rows))

	first := rows[0]
	assert.Equal(t, "7302000000000000001", first["cid"])
	// Payload-provided aweme_id wins over the stamp
	assert.Equal(t, "7301234567890123456", first["aweme_id"])
	assert.Equal(t, "amazing", first["text"])
	assert.Equal(t, "42", first["digg_count"])
	// Object-valued fields are embedded as compact JSON
	assert.Equal(t, `{"cid":"child"}`, first["reply_comment"])
	assert.Equal(t, `["mention"]`, first["text_extra"])
	assert.Contains(t, first["user"], `"unique_id":"bob"`)
	// And the commonly queried user fields get their own columns
	assert.Equal(t, "bob", first["user_unique_id"])
	assert.Equal(t, "Bob", first["user_nickname"])
	assert.Equal(t, "88", first["user_uid"])

	second := rows[1]
	assert.Equal(t, "999", second["aweme_id"])
	assert.Equal(t, "", second["user_unique_id"])
	assert.Equal(t, "", second["reply_comment"])
}

func TestGenericMapperUnwrapChains(t *testing.T) {
	t.Run("user detail", func(t *testing.T) {
		items := []tiktok.Item{{
			"userInfo": map[string]interface{}{
				"user": map[string]interface{}{
					"id":       "u100",
					"uniqueId": "somecreator",
					"verified": true,
				},
				"stats": map[string]interface{}{"followerCount": stdjson.Number("5")},
			},
		}}

		rows, columns := userInfoMapper.Rows(items)
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"id", "uniqueId", "verified"}, columns)
		assert.Equal(t, "u100", rows[0]["id"])
		assert.Equal(t, "true", rows[0]["verified"])
	})

	t.Run("sound detail alternate shape", func(t *testing.T) {
		items := []tiktok.Item{{
			"music": map[string]interface{}{
				"id":    "7016547803243022337",
				"title": "original sound",
			},
		}}

		rows, columns := soundInfoMapper.Rows(items)
		require.Len(t, rows, 1)
		assert.Equal(t, "id", columns[0])
		assert.Equal(t, "original sound", rows[0]["title"])
	})

	t.Run("playlist detail alternate shape", func(t *testing.T) {
		items := []tiktok.Item{{
			"mixInfo": map[string]interface{}{
				"mixId":   "6948562373594532614",
				"mixName": "tutorials",
			},
		}}

		rows, columns := playlistInfoMapper.Rows(items)
		require.Len(t, rows, 1)
		assert.Equal(t, "mixId", columns[0])
		assert.Equal(t, "tutorials", rows[0]["mixName"])
	})

	t.Run("no chain match keeps the item itself", func(t *testing.T) {
		rows, _ := userInfoMapper.Rows([]tiktok.Item{{"id": "top", "extra": "x"}})
		require.Len(t, rows, 1)
		assert.Equal(t, "top", rows[0]["id"])
	})
}

func TestGenericMapperScalarsOnly(t *testing.T) {
	rows, columns := generalMapper.Rows([]tiktok.Item{{
		"id":     "1",
		"title":  "kept",
		"views":  stdjson.Number("9"),
		"nested": map[string]interface{}{"dropped": true},
		"list":   []interface{}{"dropped"},
	}})

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"id", "title", "views"}, columns)
	_, hasNested := rows[0]["nested"]
	assert.False(t, hasNested)
}

func TestGenericMapperColumnUnion(t *testing.T) {
	rows, columns := playlistListMapper.Rows([]tiktok.Item{
		{"mixId": "m1", "mixName": "first"},
		{"mixId": "m2", "videoCount": stdjson.Number("12")},
	})

	require.Len(t, rows, 2)
	// Dedup column first, then the union of fields in sorted order
	assert.Equal(t, []string{"mixId", "mixName", "videoCount"}, columns)
}

func TestGenericMapperKeyChain(t *testing.T) {
	t.Run("first present key wins", func(t *testing.T) {
		mapperRows, _ := generalMapper.Rows([]tiktok.Item{{"uid": "7"}})
		assert.Equal(t, "uid", generalMapper.KeyField(mapperRows))
	})

	t.Run("no key at all", func(t *testing.T) {
		mapperRows, columns := generalMapper.Rows([]tiktok.Item{{"title": "x"}})
		assert.Equal(t, "", generalMapper.KeyField(mapperRows))
		assert.Equal(t, []string{"title"}, columns)
	})
}

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"number", stdjson.Number("123456789012345678"), "123456789012345678"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"object", map[string]interface{}{"a": "b"}, `{"a":"b"}`},
		{"array", []interface{}{"x", stdjson.Number("1")}, `["x",1]`},
		{"float", float64(3), "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellString(tt.in))
		})
	}
}

func TestScalarString(t *testing.T) {
	for _, scalar := range []interface{}{"s", stdjson.Number("1"), true, float64(2), 3} {
		_, ok := scalarString(scalar)
		assert.True(t, ok, "expected %T to be scalar", scalar)
	}
	for _, composite := range []interface{}{map[string]interface{}{}, []interface{}{}, nil} {
		_, ok := scalarString(composite)
		assert.False(t, ok, "expected %T to be non-scalar", composite)
	}
}

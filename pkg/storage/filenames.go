package storage

import (
	"regexp"
	"strings"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	unsafeChars    = regexp.MustCompile(`[^A-Za-z0-9_@\-.]`)
)

// SanitizeName reduces an identifier to filename-safe characters: whitespace
// runs and slashes become underscores, anything outside [A-Za-z0-9_@-.] is
// dropped. Identifiers that sanitize away entirely come back as "unknown",
// so every target maps to a usable file.
func SanitizeName(identifier string) string {
	name := strings.TrimSpace(identifier)
	if name == "" {
		return "unknown"
	}

	name = strings.ReplaceAll(name, "/", "_")
	name = whitespaceRuns.ReplaceAllString(name, "_")
	name = unsafeChars.ReplaceAllString(name, "")
	if name == "" {
		return "unknown"
	}

	return name
}

// Table names are deterministic per target, so repeated runs for the same
// entity converge on the same file and MergeWrite can extend it.

// UserVideosFile names the listing table for a user's posted videos.
func UserVideosFile(username string) string {
	return "@" + SanitizeName(strings.TrimPrefix(username, "@")) + ".csv"
}

// UserInfoFile names the profile table for a user.
func UserInfoFile(username string) string {
	return "@" + SanitizeName(strings.TrimPrefix(username, "@")) + "_user_info.csv"
}

// HashtagFile names the listing table for a hashtag's videos.
func HashtagFile(tag string) string {
	return "tag_" + SanitizeName(tag) + ".csv"
}

// CommentsFile names the comment table for a video.
func CommentsFile(videoID string) string {
	return "comments_" + SanitizeName(videoID) + ".csv"
}

// RepliesFile names the reply table for a comment thread.
func RepliesFile(commentID string) string {
	return "replies_" + SanitizeName(commentID) + ".csv"
}

// RelatedFile names the related-videos table for a video.
func RelatedFile(videoID string) string {
	return "related_" + SanitizeName(videoID) + ".csv"
}

// TrendingFile names the shared table for trending pulls.
func TrendingFile() string {
	return "foryou.csv"
}

// SearchVideosFile names the video search results table for a keyword.
func SearchVideosFile(keyword string) string {
	return "search_" + SanitizeName(keyword) + ".csv"
}

// SearchUsersFile names the user search results table for a keyword.
func SearchUsersFile(keyword string) string {
	return "search_user_" + SanitizeName(keyword) + ".csv"
}

// SearchGeneralFile names the mixed search results table for a keyword.
func SearchGeneralFile(keyword string) string {
	return "search_general_" + SanitizeName(keyword) + ".csv"
}

// SoundVideosFile names the listing table for videos using a sound.
func SoundVideosFile(soundID string) string {
	return "music_" + SanitizeName(soundID) + ".csv"
}

// SoundInfoFile names the metadata table for a sound.
func SoundInfoFile(soundID string) string {
	return "music_" + SanitizeName(soundID) + "_info.csv"
}

// PlaylistVideosFile names the listing table for a playlist's videos.
func PlaylistVideosFile(playlistID string) string {
	return "playlist_" + SanitizeName(playlistID) + ".csv"
}

// PlaylistInfoFile names the metadata table for a playlist.
func PlaylistInfoFile(playlistID string) string {
	return "playlist_" + SanitizeName(playlistID) + "_info.csv"
}

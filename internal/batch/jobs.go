package batch

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Job kinds accepted by the pool. They name the same operations the
// scraper facade exposes one method each for.
const (
	KindUserVideos     = "user_videos"
	KindUserInfo       = "user_detail"
	KindUserLiked      = "user_liked"
	KindUserPlaylists  = "user_playlists"
	KindHashtagVideos  = "hashtag_videos"
	KindVideoComments  = "video_comments"
	KindCommentReplies = "comment_replies"
	KindRelatedVideos  = "related_videos"
	KindTrending       = "trending"
	KindSearchVideos   = "search_videos"
	KindSearchUsers    = "search_users"
	KindSearchGeneral  = "search_general"
	KindSoundVideos    = "sound_videos"
	KindSoundInfo      = "sound_detail"
	KindPlaylistVideos = "playlist_videos"
	KindPlaylistInfo   = "playlist_detail"
)

// Job is one acquisition task: what to fetch, for which target, and how
// many rows to aim for.
type Job struct {
	Kind   string
	Target string
	Count  int
}

// Result is the outcome of one job.
type Result struct {
	Job      Job
	File     string
	Rows     int
	Err      error
	Duration time.Duration
}

var kindAliases = map[string]string{
	"user":            KindUserVideos,
	"videos":          KindUserVideos,
	"user_videos":     KindUserVideos,
	"info":            KindUserInfo,
	"user_info":       KindUserInfo,
	"user_detail":     KindUserInfo,
	"liked":           KindUserLiked,
	"user_liked":      KindUserLiked,
	"playlists":       KindUserPlaylists,
	"user_playlists":  KindUserPlaylists,
	"hashtag":         KindHashtagVideos,
	"tag":             KindHashtagVideos,
	"hashtag_videos":  KindHashtagVideos,
	"comments":        KindVideoComments,
	"video_comments":  KindVideoComments,
	"replies":         KindCommentReplies,
	"comment_replies": KindCommentReplies,
	"related":         KindRelatedVideos,
	"related_videos":  KindRelatedVideos,
	"trending":        KindTrending,
	"foryou":          KindTrending,
	"search":          KindSearchVideos,
	"search_videos":   KindSearchVideos,
	"search_users":    KindSearchUsers,
	"search_general":  KindSearchGeneral,
	"sound":           KindSoundVideos,
	"music":           KindSoundVideos,
	"sound_videos":    KindSoundVideos,
	"sound_info":      KindSoundInfo,
	"sound_detail":    KindSoundInfo,
	"playlist":        KindPlaylistVideos,
	"mix":             KindPlaylistVideos,
	"playlist_videos": KindPlaylistVideos,
	"playlist_info":   KindPlaylistInfo,
	"playlist_detail": KindPlaylistInfo,
}

// NormalizeKind maps user-facing spellings ("user", "tag", "sound-info")
// onto canonical job kinds.
func NormalizeKind(s string) (string, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if kind, ok := kindAliases[key]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("unknown job kind %q", s)
}

// NeedsTarget reports whether a kind requires a target argument. Only the
// trending feed is targetless.
func NeedsTarget(kind string) bool {
	return kind != KindTrending
}

type jobsFile struct {
	Jobs []jobEntry `yaml:"jobs"`
}

type jobEntry struct {
	Kind   string `yaml:"kind"`
	Target string `yaml:"target"`
	Count  int    `yaml:"count"`
}

// LoadJobs reads a YAML job list:
//
//	jobs:
//	  - kind: user
//	    target: somecreator
//	    count: 50
//	  - kind: trending
//
// Kinds go through NormalizeKind, missing counts fall back to
// defaultCount, and every job except trending must name a target.
func LoadJobs(path string, defaultCount int) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}

	var file jobsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse jobs file: %w", err)
	}
	if len(file.Jobs) == 0 {
		return nil, fmt.Errorf("jobs file %s lists no jobs", path)
	}

	jobs := make([]Job, 0, len(file.Jobs))
	for i, entry := range file.Jobs {
		kind, err := NormalizeKind(entry.Kind)
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		target := strings.TrimSpace(entry.Target)
		if target == "" && NeedsTarget(kind) {
			return nil, fmt.Errorf("job %d (%s): target is required", i+1, kind)
		}
		count := entry.Count
		if count <= 0 {
			count = defaultCount
		}
		jobs = append(jobs, Job{Kind: kind, Target: target, Count: count})
	}
	return jobs, nil
}

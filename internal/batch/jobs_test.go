package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeJobsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJobs(t *testing.T) {
	path := writeJobsFile(t, `
jobs:
  - kind: user
    target: somecreator
    count: 50
  - kind: tag
    target: cats
  - kind: trending
    count: 12
  - kind: sound-info
    target: "7016547803243022337"
`)

	jobs, err := LoadJobs(path, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(jobs))
	}

	want := []Job{
		{Kind: KindUserVideos, Target: "somecreator", Count: 50},
		{Kind: KindHashtagVideos, Target: "cats", Count: 30},
		{Kind: KindTrending, Target: "", Count: 12},
		{Kind: KindSoundInfo, Target: "7016547803243022337", Count: 30},
	}
	for i, job := range jobs {
		if job != want[i] {
			t.Errorf("job %d: got %+v, want %+v", i, job, want[i])
		}
	}
}

func TestLoadJobsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name:    "unknown kind",
			content: "jobs:\n  - kind: tweets\n    target: x\n",
			errPart: "unknown job kind",
		},
		{
			name:    "missing target",
			content: "jobs:\n  - kind: user\n",
			errPart: "target is required",
		},
		{
			name:    "empty file",
			content: "jobs: []\n",
			errPart: "no jobs",
		},
		{
			name:    "not yaml",
			content: "{{{",
			errPart: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeJobsFile(t, tt.content)
			_, err := LoadJobs(path, 30)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestLoadJobsMissingFile(t *testing.T) {
	_, err := LoadJobs(filepath.Join(t.TempDir(), "absent.yaml"), 30)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user", KindUserVideos},
		{"USER", KindUserVideos},
		{" videos ", KindUserVideos},
		{"user-info", KindUserInfo},
		{"liked", KindUserLiked},
		{"playlists", KindUserPlaylists},
		{"hashtag", KindHashtagVideos},
		{"tag", KindHashtagVideos},
		{"comments", KindVideoComments},
		{"replies", KindCommentReplies},
		{"related", KindRelatedVideos},
		{"foryou", KindTrending},
		{"search", KindSearchVideos},
		{"search-users", KindSearchUsers},
		{"search-general", KindSearchGeneral},
		{"sound", KindSoundVideos},
		{"music", KindSoundVideos},
		{"sound-info", KindSoundInfo},
		{"playlist", KindPlaylistVideos},
		{"mix", KindPlaylistVideos},
		{"playlist-info", KindPlaylistInfo},
	}
	for _, tt := range tests {
		got, err := NormalizeKind(tt.in)
		if err != nil {
			t.Errorf("NormalizeKind(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := NormalizeKind("bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNeedsTarget(t *testing.T) {
	if NeedsTarget(KindTrending) {
		t.Error("trending must not require a target")
	}
	if !NeedsTarget(KindUserVideos) {
		t.Error("user videos requires a target")
	}
}

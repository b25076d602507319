package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"tokscraper/pkg/scraper"
	"tokscraper/pkg/tiktok"
)

// TestUserVideosEndToEnd runs the full pipeline for a user listing: scripted
// fetch, row mapping, merge-write, result accounting.
func TestUserVideosEndToEnd(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.Script("UserVideos", GenerateVideoItems(3, "v"))

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	res, err := s.ScrapeUser(context.Background(), "@stuntfan", 10)
	helper.AssertNoError(err)

	if res.Kind != "user_videos" {
		t.Errorf("Expected kind user_videos, got %s", res.Kind)
	}
	if res.Target != "stuntfan" {
		t.Errorf("Expected target stuntfan, got %s", res.Target)
	}
	if res.File != "@stuntfan.csv" {
		t.Errorf("Expected file @stuntfan.csv, got %s", res.File)
	}
	if res.Collected != 3 || res.Written != 3 {
		t.Errorf("Expected 3 collected and 3 written, got %d/%d", res.Collected, res.Written)
	}
	if res.FromCache {
		t.Error("Fresh fetch should not be marked as cached")
	}

	header, records := helper.ReadCSV("@stuntfan.csv")
	if len(header) != 22 {
		t.Errorf("Expected 22 video columns, got %d: %v", len(header), header)
	}
	if header[0] != "video_id" {
		t.Errorf("Expected video_id as first column, got %s", header[0])
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(records))
	}

	ids := helper.Column(header, records, "video_id")
	for i := 0; i < 3; i++ {
		if !containsValue(ids, fmt.Sprintf("v%d", i)) {
			t.Errorf("Expected video v%d in table, got ids %v", i, ids)
		}
	}

	usernames := helper.Column(header, records, "author_username")
	if usernames[0] != "stuntfan" {
		t.Errorf("Expected author_username stuntfan, got %s", usernames[0])
	}
}

// TestMergeAcrossRuns verifies overlapping fetches accumulate by video ID
// instead of duplicating or truncating rows.
func TestMergeAcrossRuns(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	all := GenerateVideoItems(3, "v")
	client := NewMockTikTokClient()
	client.Script("UserVideos", all[0:2], all[1:3])

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	res1, err := s.ScrapeUser(context.Background(), "stuntfan", 10)
	helper.AssertNoError(err)
	if res1.Written != 2 {
		t.Errorf("First run: expected 2 rows written, got %d", res1.Written)
	}

	res2, err := s.ScrapeUser(context.Background(), "stuntfan", 10)
	helper.AssertNoError(err)
	if res2.Collected != 2 {
		t.Errorf("Second run: expected 2 collected, got %d", res2.Collected)
	}
	if res2.Written != 3 {
		t.Errorf("Second run: expected 3 rows after merge, got %d", res2.Written)
	}

	header, records := helper.ReadCSV("@stuntfan.csv")
	ids := helper.Column(header, records, "video_id")
	if len(ids) != 3 {
		t.Fatalf("Expected 3 merged rows, got %d", len(ids))
	}
	for _, want := range []string{"v0", "v1", "v2"} {
		if !containsValue(ids, want) {
			t.Errorf("Expected %s after merge, got %v", want, ids)
		}
	}
}

// TestEmptyRefetchUsesCachedResult verifies an empty refetch is served from
// the in-memory cache instead of persisting nothing.
func TestEmptyRefetchUsesCachedResult(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.Script("HashtagVideos", GenerateVideoItems(2, "tag"), nil)

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	res1, err := s.ScrapeHashtag(context.Background(), "#dance", 10)
	helper.AssertNoError(err)
	if res1.FromCache || res1.Collected != 2 {
		t.Fatalf("First run: expected 2 fresh items, got collected=%d fromCache=%v", res1.Collected, res1.FromCache)
	}

	res2, err := s.ScrapeHashtag(context.Background(), "#dance", 10)
	helper.AssertNoError(err)
	if !res2.FromCache {
		t.Error("Empty refetch should fall back to the cached result")
	}
	if res2.Collected != 2 {
		t.Errorf("Expected 2 cached items, got %d", res2.Collected)
	}
	if client.CallCount("HashtagVideos") != 2 {
		t.Errorf("Expected 2 upstream calls, got %d", client.CallCount("HashtagVideos"))
	}

	helper.AssertRowCount("tag_dance.csv", 2)
}

// TestEmptyRefetchPreservesRowsWithoutCache verifies that with the cache off,
// an empty refetch still leaves previously collected rows on disk.
func TestEmptyRefetchPreservesRowsWithoutCache(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()
	cfg.Cache.Enabled = false

	client := NewMockTikTokClient()
	client.Script("UserVideos", GenerateVideoItems(2, "v"), nil)

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	_, err := s.ScrapeUser(context.Background(), "stuntfan", 10)
	helper.AssertNoError(err)

	res2, err := s.ScrapeUser(context.Background(), "stuntfan", 10)
	helper.AssertNoError(err)
	if res2.FromCache {
		t.Error("Cache is disabled, result must not be marked cached")
	}
	if res2.Collected != 0 {
		t.Errorf("Expected 0 collected on empty refetch, got %d", res2.Collected)
	}
	if res2.Written != 2 {
		t.Errorf("Expected the 2 existing rows to survive, got %d", res2.Written)
	}

	helper.AssertRowCount("@stuntfan.csv", 2)
}

// TestDetailRefetchSkipsCacheFallback verifies detail exports always reflect
// the live response, never a cached one.
func TestDetailRefetchSkipsCacheFallback(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.ScriptDetail("UserDetail", GenerateUserDetail("gymlife"), tiktok.Item{})

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	res1, err := s.ScrapeUserInfo(context.Background(), "gymlife")
	helper.AssertNoError(err)
	if res1.Collected != 1 || res1.Written != 1 {
		t.Fatalf("First run: expected one profile row, got collected=%d written=%d", res1.Collected, res1.Written)
	}

	res2, err := s.ScrapeUserInfo(context.Background(), "gymlife")
	helper.AssertNoError(err)
	if res2.FromCache {
		t.Error("Detail exports must not fall back to cache")
	}
	if res2.Collected != 0 {
		t.Errorf("Expected 0 collected from the empty detail, got %d", res2.Collected)
	}

	helper.AssertRowCount("@gymlife_user_info.csv", 1)
}

// TestFetchFailureYieldsEmptyResult verifies acquisition errors are absorbed:
// the run continues, the table gets its header and the result reports zero.
func TestFetchFailureYieldsEmptyResult(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.FailWith("Trending", fmt.Errorf("listing endpoint refused"))

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	res, err := s.ScrapeTrending(context.Background(), 10)
	helper.AssertNoError(err)
	if res.Collected != 0 || res.Written != 0 {
		t.Errorf("Expected empty result, got collected=%d written=%d", res.Collected, res.Written)
	}

	header, records := helper.ReadCSV("foryou.csv")
	if len(header) != 22 {
		t.Errorf("Expected full video header even when empty, got %d columns", len(header))
	}
	if len(records) != 0 {
		t.Errorf("Expected no rows, got %d", len(records))
	}
}

// TestCancelledContextAbortsRun verifies cancellation is the one fetch error
// that surfaces instead of degrading to an empty result.
func TestCancelledContextAbortsRun(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.Script("UserVideos", GenerateVideoItems(3, "v"))

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.ScrapeUser(ctx, "stuntfan", 10)
	helper.AssertError(err)
	if res != nil {
		t.Errorf("Expected no result after cancellation, got %+v", res)
	}

	helper.AssertFileNotExists("@stuntfan.csv")
}

// TestRunReportWritten verifies Close persists a report naming every
// operation of the run.
func TestRunReportWritten(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()
	cfg.Output.WriteReport = true

	client := NewMockTikTokClient()
	client.Script("UserVideos", GenerateVideoItems(2, "v"))
	client.Script("Trending", GenerateVideoItems(1, "t"))

	s := helper.NewScraper(cfg, client)

	_, err := s.ScrapeUser(context.Background(), "stuntfan", 10)
	helper.AssertNoError(err)
	_, err = s.ScrapeTrending(context.Background(), 10)
	helper.AssertNoError(err)

	helper.AssertNoError(s.Close())

	report, err := scraper.LoadReport(filepath.Join(helper.OutputDir(), "report.json"))
	helper.AssertNoError(err)

	if len(report.Operations) != 2 {
		t.Fatalf("Expected 2 recorded operations, got %d", len(report.Operations))
	}
	if report.Operations[0].Kind != "user_videos" {
		t.Errorf("Expected first record user_videos, got %s", report.Operations[0].Kind)
	}
	if report.Operations[1].Kind != "trending" {
		t.Errorf("Expected second record trending, got %s", report.Operations[1].Kind)
	}
	if report.Operations[0].Written != 2 {
		t.Errorf("Expected 2 rows recorded, got %d", report.Operations[0].Written)
	}
}

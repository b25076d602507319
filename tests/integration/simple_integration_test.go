package integration

import (
	"context"
	"testing"

	"tokscraper/pkg/tiktok"
)

// TestMockClientFunctionality tests that the scripted client works correctly
func TestMockClientFunctionality(t *testing.T) {
	client := NewMockTikTokClient()
	client.Script("Trending", GenerateVideoItems(2, "a"), GenerateVideoItems(1, "b"))

	ctx := context.Background()

	first, err := client.Trending(ctx, 10)
	if err != nil {
		t.Fatalf("First page failed: %v", err)
	}
	if len(first) != 2 {
		t.Errorf("Expected 2 items on first page, got %d", len(first))
	}

	second, err := client.Trending(ctx, 10)
	if err != nil {
		t.Fatalf("Second page failed: %v", err)
	}
	if len(second) != 1 {
		t.Errorf("Expected 1 item on second page, got %d", len(second))
	}

	// The last scripted page sticks
	third, _ := client.Trending(ctx, 10)
	if len(third) != 1 {
		t.Errorf("Expected last page to repeat, got %d items", len(third))
	}

	if client.CallCount("Trending") != 3 {
		t.Errorf("Expected 3 recorded calls, got %d", client.CallCount("Trending"))
	}
	if client.CallCount("UserVideos") != 0 {
		t.Errorf("Expected no UserVideos calls, got %d", client.CallCount("UserVideos"))
	}
}

// TestUnscriptedMethodsReturnEmpty tests the dry-endpoint default
func TestUnscriptedMethodsReturnEmpty(t *testing.T) {
	client := NewMockTikTokClient()

	items, err := client.SearchVideos(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Unscripted method returned error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}

	detail, err := client.SoundDetail(context.Background(), "123")
	if err != nil {
		t.Fatalf("Unscripted detail returned error: %v", err)
	}
	if len(detail) != 0 {
		t.Errorf("Expected empty detail, got %v", detail)
	}
}

// TestTargetNormalizationThroughFacade verifies share URLs and decorated
// targets resolve to the canonical table names.
func TestTargetNormalizationThroughFacade(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.Script("VideoComments", GenerateCommentItems(2, "7301111111111111111"))

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	res, err := s.ScrapeComments(context.Background(), "https://www.tiktok.com/@someone/video/7301111111111111111", 10)
	helper.AssertNoError(err)

	if res.Target != "7301111111111111111" {
		t.Errorf("Expected video ID as target, got %s", res.Target)
	}
	if res.File != "comments_7301111111111111111.csv" {
		t.Errorf("Expected comments table name, got %s", res.File)
	}
	helper.AssertRowCount("comments_7301111111111111111.csv", 2)
}

// TestCommentTableShape verifies the comment export carries the full flat
// header and the derived user columns.
func TestCommentTableShape(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.Script("VideoComments", GenerateCommentItems(1, "42"))

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	_, err := s.ScrapeComments(context.Background(), "42", 10)
	helper.AssertNoError(err)

	header, records := helper.ReadCSV("comments_42.csv")
	if len(header) != 33 {
		t.Errorf("Expected 33 comment columns, got %d", len(header))
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(records))
	}

	if got := helper.Column(header, records, "user_unique_id")[0]; got != "commenter0" {
		t.Errorf("Expected derived user_unique_id commenter0, got %s", got)
	}
	if got := helper.Column(header, records, "aweme_id")[0]; got != "42" {
		t.Errorf("Expected aweme_id 42, got %s", got)
	}
}

// TestTrendingTableName verifies the For You feed lands in foryou.csv.
func TestTrendingTableName(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.Script("Trending", GenerateVideoItems(2, "t"))

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	res, err := s.ScrapeTrending(context.Background(), 10)
	helper.AssertNoError(err)

	if res.File != "foryou.csv" {
		t.Errorf("Expected foryou.csv, got %s", res.File)
	}
	if res.Target != "" {
		t.Errorf("Trending has no target, got %s", res.Target)
	}
	helper.AssertRowCount("foryou.csv", 2)
}

// TestUserInfoUnwrapsProfilePayload verifies the detail export flattens the
// wrapped profile object into scalar columns.
func TestUserInfoUnwrapsProfilePayload(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.ScriptDetail("UserDetail", GenerateUserDetail("gymlife"))

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	res, err := s.ScrapeUserInfo(context.Background(), "gymlife")
	helper.AssertNoError(err)

	if res.File != "@gymlife_user_info.csv" {
		t.Errorf("Expected user info table name, got %s", res.File)
	}

	header, records := helper.ReadCSV("@gymlife_user_info.csv")
	if len(records) != 1 {
		t.Fatalf("Expected 1 profile row, got %d", len(records))
	}
	if got := helper.Column(header, records, "uniqueId")[0]; got != "gymlife" {
		t.Errorf("Expected uniqueId gymlife, got %s", got)
	}
	if got := helper.Column(header, records, "verified")[0]; got != "true" {
		t.Errorf("Expected verified true, got %s", got)
	}

	// Nested stats stay out of the flat profile export
	for _, col := range header {
		if col == "stats" {
			t.Error("Nested objects must not become profile columns")
		}
	}
}

// TestSearchVariants verifies each search flavor lands in its own table.
func TestSearchVariants(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	client := NewMockTikTokClient()
	client.Script("SearchVideos", GenerateVideoItems(2, "sv"))
	client.Script("SearchUsers", []tiktok.Item{
		{"user": map[string]interface{}{"uid": "501", "unique_id": "found", "nickname": "Found User"}},
	})

	s := helper.NewScraper(cfg, client)
	defer s.Close()

	res, err := s.ScrapeSearch(context.Background(), "street workout", 10)
	helper.AssertNoError(err)
	if res.File != "search_street_workout.csv" {
		t.Errorf("Unexpected search table name: %s", res.File)
	}
	helper.AssertRowCount(res.File, 2)

	resUsers, err := s.ScrapeSearchUsers(context.Background(), "street workout", 10)
	helper.AssertNoError(err)
	if resUsers.File != "search_user_street_workout.csv" {
		t.Errorf("Unexpected user search table name: %s", resUsers.File)
	}

	header, records := helper.ReadCSV(resUsers.File)
	if len(records) != 1 {
		t.Fatalf("Expected 1 user row, got %d", len(records))
	}
	if got := helper.Column(header, records, "unique_id")[0]; got != "found" {
		t.Errorf("Expected unwrapped unique_id found, got %s", got)
	}
}

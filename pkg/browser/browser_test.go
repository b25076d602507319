package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tokscraper/pkg/config"
	errs "tokscraper/pkg/errors"
	"tokscraper/pkg/logger"
	"tokscraper/pkg/retry"
)

func testContext(t *testing.T) *ExecutionContext {
	t.Helper()
	return New(config.DefaultConfig(), logger.NewNopLogger())
}

func TestStealthScriptCoversKnownMarkers(t *testing.T) {
	markers := []string{
		"webdriver",
		"chrome.runtime",
		"languages",
		"platform",
		"vendor",
		"37445",
		"37446",
		"Intel Inc.",
		"Intel Iris OpenGL Engine",
	}

	for _, marker := range markers {
		if !strings.Contains(stealthScript, marker) {
			t.Errorf("Stealth script missing %q", marker)
		}
	}
}

func TestWarmUpStops(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		profile string
		want    []string
	}{
		{
			name:    "default profile",
			baseURL: "https://www.tiktok.com",
			profile: "tiktok",
			want: []string{
				"https://www.tiktok.com",
				"https://www.tiktok.com/foryou",
				"https://www.tiktok.com/@tiktok",
			},
		},
		{
			name:    "trailing slash trimmed",
			baseURL: "https://www.tiktok.com/",
			profile: "tiktok",
			want: []string{
				"https://www.tiktok.com",
				"https://www.tiktok.com/foryou",
				"https://www.tiktok.com/@tiktok",
			},
		},
		{
			name:    "no profile skips the profile stop",
			baseURL: "https://www.tiktok.com",
			profile: "",
			want: []string{
				"https://www.tiktok.com",
				"https://www.tiktok.com/foryou",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := warmUpStops(tt.baseURL, tt.profile)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d stops, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Stop %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := testContext(t)
	b := testContext(t)

	if a.ID() == "" {
		t.Fatal("Expected a non-empty context ID")
	}
	if a.ID() == b.ID() {
		t.Error("Expected distinct context IDs")
	}
}

func TestUnstartedContextReportsContextError(t *testing.T) {
	ec := testContext(t)

	var out int
	err := ec.Evaluate(context.Background(), "1", &out)
	if err == nil {
		t.Fatal("Expected error evaluating on an unstarted context")
	}
	if errs.TypeOf(err) != errs.ErrorTypeContext {
		t.Errorf("Expected context error type, got %v", errs.TypeOf(err))
	}
}

func TestUnstartedContextIsNotHealthy(t *testing.T) {
	ec := testContext(t)

	if ec.Healthy(context.Background()) {
		t.Error("Unstarted context should not report healthy")
	}
}

func TestCloseOnUnstartedContextIsSafe(t *testing.T) {
	ec := testContext(t)

	if err := ec.Close(); err != nil {
		t.Errorf("Close on unstarted context should be a no-op, got %v", err)
	}
	if ec.Restarts() != 0 {
		t.Errorf("Expected 0 restarts, got %d", ec.Restarts())
	}
}

func startupRetryConfig() *retry.Config {
	return &retry.Config{
		MaxAttempts: 3,
		Backoff:     &retry.ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(error) bool { return true },
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}
}

func TestStartupBudgetExhausted(t *testing.T) {
	calls := 0
	err := startWithRetry(func() error {
		calls++
		return errors.New("chrome refused to come up")
	}, startupRetryConfig())

	if calls != 3 {
		t.Errorf("Expected 3 launch attempts, got %d", calls)
	}
	if err == nil {
		t.Fatal("Expected an error after the budget is spent")
	}
	if errs.TypeOf(err) != errs.ErrorTypeStartup {
		t.Errorf("Expected startup error type, got %v", errs.TypeOf(err))
	}
}

func TestStartupSecondAttemptSucceeds(t *testing.T) {
	calls := 0
	err := startWithRetry(func() error {
		calls++
		if calls == 1 {
			return errors.New("first launch flaked")
		}
		return nil
	}, startupRetryConfig())

	if err != nil {
		t.Fatalf("Expected the second attempt to succeed, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 launch attempts, got %d", calls)
	}
}

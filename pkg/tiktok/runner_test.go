package tiktok

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tokscraper/pkg/browser"
	"tokscraper/pkg/config"
	"tokscraper/pkg/logger"
)

// fakeRunner scripts a browser tab for tests. Fetch results are
// consumed in order and every interaction is recorded so tests can
// assert on URLs, navigations and restarts.
type fakeRunner struct {
	// signerReadyAfter is how many signer probes fail before the
	// runtime reports ready; 0 means ready immediately
	signerReadyAfter int
	signerProbes     int

	// results are consumed by EvaluateAsync in order: a string is
	// written to out, an error is returned as-is
	results []interface{}
	scripts []string

	profile  pageProbe
	probeErr error

	token    string
	tokenErr error

	navigations []string
	navErr      error

	restarts   int
	restartErr error
	healthy    bool
	warmUps    int
}

var _ browser.Runner = (*fakeRunner)(nil)

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		healthy: true,
		token:   "test-token",
		profile: pageProbe{
			UserAgent:    "Mozilla/5.0 (test)",
			Language:     "en-US",
			Platform:     "MacIntel",
			TZName:       "America/New_York",
			ScreenWidth:  1920,
			ScreenHeight: 1080,
		},
	}
}

func (f *fakeRunner) queue(results ...interface{}) {
	f.results = append(f.results, results...)
}

func (f *fakeRunner) Navigate(_ context.Context, url string) error {
	f.navigations = append(f.navigations, url)
	return f.navErr
}

func (f *fakeRunner) Evaluate(_ context.Context, _ string, out interface{}) error {
	switch v := out.(type) {
	case *bool:
		f.signerProbes++
		*v = f.signerProbes > f.signerReadyAfter
		return nil
	case *pageProbe:
		if f.probeErr != nil {
			return f.probeErr
		}
		*v = f.profile
		return nil
	default:
		return fmt.Errorf("unexpected evaluate target %T", out)
	}
}

func (f *fakeRunner) EvaluateAsync(_ context.Context, script string, out interface{}) error {
	f.scripts = append(f.scripts, script)
	if len(f.results) == 0 {
		return fmt.Errorf("no scripted result for fetch %d", len(f.scripts))
	}
	next := f.results[0]
	f.results = f.results[1:]

	switch v := next.(type) {
	case error:
		return v
	case string:
		*(out.(*string)) = v
		return nil
	default:
		panic(fmt.Sprintf("unsupported scripted result %T", next))
	}
}

func (f *fakeRunner) WarmUp(context.Context) error {
	f.warmUps++
	return nil
}

func (f *fakeRunner) SessionToken(context.Context) (string, error) {
	return f.token, f.tokenErr
}

func (f *fakeRunner) Restart(context.Context) error {
	f.restarts++
	return f.restartErr
}

func (f *fakeRunner) Healthy(context.Context) bool {
	return f.healthy
}

var scriptURLPattern = regexp.MustCompile(`let url = ("(?:[^"\\]|\\.)*");`)

// requestedURLs recovers the URL embedded in each recorded fetch
// script, in call order.
func (f *fakeRunner) requestedURLs(t *testing.T) []string {
	t.Helper()
	urls := make([]string, 0, len(f.scripts))
	for _, script := range f.scripts {
		m := scriptURLPattern.FindStringSubmatch(script)
		require.NotNil(t, m, "fetch script carries no URL: %s", script)
		u, err := strconv.Unquote(m[1])
		require.NoError(t, err)
		urls = append(urls, u)
	}
	return urls
}

// testConfig returns defaults with retry delays short enough to run
// failure paths in tests.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Acquisition.RetryDelayMin = time.Millisecond
	cfg.Acquisition.RetryDelayMax = 2 * time.Millisecond
	return cfg
}

func newTestEngine(f *fakeRunner, cfg *config.Config) *engine {
	return newEngine(f, cfg, logger.NewNopLogger())
}

func newTestClient(f *fakeRunner, cfg *config.Config) *Client {
	return NewClient(f, cfg, logger.NewNopLogger())
}

// okResult wraps a body in the fetch script's success sentinel.
func okResult(body string) string {
	return statusPrefix + "200__" + body
}

// videoPage builds one itemList page body.
func videoPage(ids []string, hasMore bool, cursor string) string {
	items := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		items[i] = map[string]interface{}{"id": id, "desc": "video " + id}
	}
	body, err := json.Marshal(map[string]interface{}{
		"statusCode": 0,
		"itemList":   items,
		"hasMore":    hasMore,
		"cursor":     cursor,
	})
	if err != nil {
		panic(err)
	}
	return okResult(string(body))
}

// sequentialIDs returns n ids counting up from start.
func sequentialIDs(start, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(start + i)
	}
	return ids
}

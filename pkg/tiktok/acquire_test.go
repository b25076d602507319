package tiktok

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "tokscraper/pkg/errors"
)

func queryOf(t *testing.T, rawURL string) url.Values {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	return parsed.Query()
}

func TestFetchSuccess(t *testing.T) {
	f := newFakeRunner()
	f.queue(okResult(`{"statusCode":0,"userInfo":{"user":{"secUid":"MS4wLjABAAAA"}}}`))
	e := newTestEngine(f, testConfig())

	payload, err := e.Fetch(context.Background(), endpoints[EndpointUserDetail], map[string]string{
		"uniqueId": "someuser",
		"secUid":   "",
	})
	require.NoError(t, err)
	assert.Equal(t, "MS4wLjABAAAA", Item(payload).Str("userInfo", "user", "secUid"))

	urls := f.requestedURLs(t)
	require.Len(t, urls, 1)
	q := queryOf(t, urls[0])
	assert.Equal(t, "someuser", q.Get("uniqueId"))
	assert.Equal(t, "1988", q.Get("aid"))
	assert.Equal(t, "test-token", q.Get("msToken"))
	assert.Equal(t, "user", q.Get("from_page"))
	assert.True(t, strings.HasPrefix(urls[0], "https://www.tiktok.com/api/user/detail/?"), urls[0])
}

func TestFetchEmptyBodiesThenSuccess(t *testing.T) {
	f := newFakeRunner()
	f.queue(
		okResult(""),
		okResult(""),
		okResult(`{"statusCode":0,"userInfo":{}}`),
	)
	e := newTestEngine(f, testConfig())

	payload, err := e.Fetch(context.Background(), endpoints[EndpointUserDetail], nil)
	require.NoError(t, err)
	assert.NotNil(t, payload)
	assert.Len(t, f.scripts, 3, "exactly two retries")

	// Transient failures recover by touching the public feed
	require.Len(t, f.navigations, 2)
	for _, u := range f.navigations {
		assert.Equal(t, "https://www.tiktok.com/foryou", u)
	}
}

func TestFetchHardBlockStopsImmediately(t *testing.T) {
	f := newFakeRunner()
	f.queue(okResult(`{"statusCode":100002}`))
	e := newTestEngine(f, testConfig())

	_, err := e.Fetch(context.Background(), endpoints[EndpointHashtagVideos], nil)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeHardBlock, errs.TypeOf(err))
	assert.Equal(t, hardBlockCode, errs.CodeOf(err))
	assert.Len(t, f.scripts, 1, "a hard block is never retried")
}

func TestFetchExhaustsRetryBudget(t *testing.T) {
	f := newFakeRunner()
	for i := 0; i < 5; i++ {
		f.queue(okResult(`{"statusCode":10000,"message":"try later"}`))
	}
	e := newTestEngine(f, testConfig())

	_, err := e.Fetch(context.Background(), endpoints[EndpointUserDetail], nil)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeEndpoint, errs.TypeOf(err))
	assert.Contains(t, err.Error(), "max retry attempts")
	assert.Len(t, f.scripts, 5)
	assert.Empty(t, f.results, "no attempts beyond the budget")
}

func TestFetchRotatesSessionAfterRepeatedFailures(t *testing.T) {
	f := newFakeRunner()
	f.queue(
		okResult(""),
		okResult(""),
		okResult(`{"statusCode":0,"userInfo":{}}`),
	)
	e := newTestEngine(f, testConfig())

	_, err := e.Fetch(context.Background(), endpoints[EndpointUserDetail], nil)
	require.NoError(t, err)

	urls := f.requestedURLs(t)
	require.Len(t, urls, 3)
	first := queryOf(t, urls[0]).Get("device_id")
	second := queryOf(t, urls[1]).Get("device_id")
	third := queryOf(t, urls[2]).Get("device_id")

	assert.Equal(t, first, second, "one failure keeps the session identity")
	assert.NotEqual(t, second, third, "two failures rotate the session identity")
}

func TestFetchOriginHintPerEndpoint(t *testing.T) {
	f := newFakeRunner()
	f.queue(okResult(`{"statusCode":0,"itemList":[]}`))
	e := newTestEngine(f, testConfig())

	_, err := e.Fetch(context.Background(), endpoints[EndpointTrending], nil)
	require.NoError(t, err)

	q := queryOf(t, f.requestedURLs(t)[0])
	assert.Equal(t, "fyp", q.Get("from_page"))
}

func TestFetchConfiguredTokenCoversMissingCookie(t *testing.T) {
	f := newFakeRunner()
	f.token = ""
	f.queue(okResult(`{"statusCode":0,"userInfo":{}}`))
	cfg := testConfig()
	cfg.TikTok.MSToken = "configured-token"
	e := newTestEngine(f, cfg)

	_, err := e.Fetch(context.Background(), endpoints[EndpointUserDetail], nil)
	require.NoError(t, err)

	q := queryOf(t, f.requestedURLs(t)[0])
	assert.Equal(t, "configured-token", q.Get("msToken"))
}

func TestFetchRestartsDeadContext(t *testing.T) {
	f := newFakeRunner()
	f.healthy = false
	f.queue(
		&errs.Error{Type: errs.ErrorTypeContext, Message: "browser context lost"},
		okResult(`{"statusCode":0,"userInfo":{}}`),
	)
	e := newTestEngine(f, testConfig())

	_, err := e.Fetch(context.Background(), endpoints[EndpointUserDetail], nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.restarts)
}

func TestFetchCanceledContext(t *testing.T) {
	f := newFakeRunner()
	f.queue(okResult(""))
	e := newTestEngine(f, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Fetch(ctx, endpoints[EndpointUserDetail], nil)
	require.Error(t, err)
}

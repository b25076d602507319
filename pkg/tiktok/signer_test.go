package tiktok

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "tokscraper/pkg/errors"
)

func TestParseFetchResult(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantStatus int
		wantBody   string
		wantErr    errs.ErrorType
	}{
		{
			name:       "ok response",
			raw:        "__STATUS_200__{\"statusCode\":0}",
			wantStatus: 200,
			wantBody:   "{\"statusCode\":0}",
		},
		{
			name:       "body containing separator",
			raw:        "__STATUS_200__a__b",
			wantStatus: 200,
			wantBody:   "a__b",
		},
		{
			name:       "error status with body",
			raw:        "__STATUS_403__denied, come back later",
			wantStatus: 403,
			wantBody:   "denied, come back later",
		},
		{
			name:    "network failure",
			raw:     "__FETCH_ERROR__:Failed to fetch",
			wantErr: errs.ErrorTypeTransport,
		},
		{
			name:    "missing separator",
			raw:     "__STATUS_200",
			wantErr: errs.ErrorTypeTransport,
		},
		{
			name:    "garbage status",
			raw:     "__STATUS_abc__body",
			wantErr: errs.ErrorTypeTransport,
		},
		{
			name:    "unrecognized result",
			raw:     "undefined",
			wantErr: errs.ErrorTypeTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := parseFetchResult(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errs.TypeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, outcome.HTTPStatus)
			assert.Equal(t, tt.wantBody, string(outcome.Body))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		status   int
		body     string
		wantErr  errs.ErrorType
		wantCode int
	}{
		{
			name:     "zero status code",
			endpoint: EndpointUserDetail,
			status:   200,
			body:     `{"statusCode":0,"userInfo":{"user":{}}}`,
		},
		{
			name:     "success key without status code",
			endpoint: EndpointUserDetail,
			status:   200,
			body:     `{"userInfo":{"user":{}},"extra":"yes"}`,
		},
		{
			name:     "empty body",
			endpoint: EndpointUserDetail,
			status:   200,
			body:     "",
			wantErr:  errs.ErrorTypeTransient,
		},
		{
			name:     "truncated body",
			endpoint: EndpointUserDetail,
			status:   200,
			body:     "{}",
			wantErr:  errs.ErrorTypeTransient,
		},
		{
			name:     "malformed json on retryable status",
			endpoint: EndpointUserDetail,
			status:   200,
			body:     `<html>not json at all</html>`,
			wantErr:  errs.ErrorTypeTransient,
		},
		{
			name:     "malformed json on permanent status",
			endpoint: EndpointUserDetail,
			status:   403,
			body:     `<html>access denied body</html>`,
			wantErr:  errs.ErrorTypeEndpoint,
			wantCode: 403,
		},
		{
			name:     "malformed json on server error",
			endpoint: EndpointUserDetail,
			status:   500,
			body:     `<html>internal server error</html>`,
			wantErr:  errs.ErrorTypeTransient,
		},
		{
			name:     "hard block code on hashtag listing",
			endpoint: EndpointHashtagVideos,
			status:   200,
			body:     `{"statusCode":100002,"message":"blocked"}`,
			wantErr:  errs.ErrorTypeHardBlock,
			wantCode: 100002,
		},
		{
			name:     "block code elsewhere is a plain endpoint error",
			endpoint: EndpointUserDetail,
			status:   200,
			body:     `{"statusCode":100002,"message":"blocked"}`,
			wantErr:  errs.ErrorTypeEndpoint,
			wantCode: 100002,
		},
		{
			name:     "nonzero status code",
			endpoint: EndpointUserDetail,
			status:   200,
			body:     `{"statusCode":10201,"message":"user not found"}`,
			wantErr:  errs.ErrorTypeEndpoint,
			wantCode: 10201,
		},
		{
			name:     "no code and no success keys",
			endpoint: EndpointUserDetail,
			status:   200,
			body:     `{"unexpected":"shape"}`,
			wantErr:  errs.ErrorTypeEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := classify(endpoints[tt.endpoint], FetchOutcome{
				HTTPStatus: tt.status,
				Body:       []byte(tt.body),
			})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errs.TypeOf(err))
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, errs.CodeOf(err))
				}
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, payload)
		})
	}
}

func TestEnsureSignerReadyImmediately(t *testing.T) {
	f := newFakeRunner()
	e := newTestEngine(f, testConfig())

	require.NoError(t, e.ensureSigner(context.Background()))
	assert.Empty(t, f.navigations, "no recovery navigation when the signer is ready")
	assert.Equal(t, 1, f.signerProbes)
}

func TestEnsureSignerMemoized(t *testing.T) {
	f := newFakeRunner()
	e := newTestEngine(f, testConfig())

	require.NoError(t, e.ensureSigner(context.Background()))
	require.NoError(t, e.ensureSigner(context.Background()))
	assert.Equal(t, 1, f.signerProbes, "second call must not re-probe")
}

func TestEnsureSignerRecoversAfterNavigation(t *testing.T) {
	f := newFakeRunner()
	f.signerReadyAfter = 2
	e := newTestEngine(f, testConfig())

	require.NoError(t, e.ensureSigner(context.Background()))
	assert.Equal(t, 3, f.signerProbes)
	require.Len(t, f.navigations, 2)
	for _, url := range f.navigations {
		assert.True(t, strings.HasPrefix(url, "https://www.tiktok.com"), url)
	}
}

func TestEnsureSignerGivesUp(t *testing.T) {
	f := newFakeRunner()
	f.signerReadyAfter = 1 << 30
	e := newTestEngine(f, testConfig())

	err := e.ensureSigner(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeSigning, errs.TypeOf(err))
	assert.Equal(t, maxSignerChecks, f.signerProbes)
	assert.Len(t, f.navigations, maxSignerChecks-1, "no navigation after the last check")
}

func TestFetchScriptShape(t *testing.T) {
	// The script must sign before fetching and tolerate a signer that
	// throws; both sentinels must be present for result parsing.
	assert.Contains(t, fetchScript, "frontierSign")
	assert.Contains(t, fetchScript, "credentials: 'include'")
	assert.Contains(t, fetchScript, statusPrefix)
	assert.Contains(t, fetchScript, fetchErrorPrefix)
	assert.Less(t, strings.Index(fetchScript, "frontierSign"), strings.Index(fetchScript, "fetch(url"))
}

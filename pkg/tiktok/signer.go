package tiktok

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	errs "tokscraper/pkg/errors"
	"tokscraper/pkg/retry"
)

// maxSignerChecks bounds how often we re-probe for the signing runtime
// before giving up on the call.
const maxSignerChecks = 5

// minBodyLength is the shortest body worth parsing. Anything under it
// is a blank page or a truncated response.
const minBodyLength = 10

// signerProbeScript checks that the site's signing runtime is loaded
// and exposes the function we call.
const signerProbeScript = `typeof window.byted_acrawler !== 'undefined' && typeof window.byted_acrawler.frontierSign === 'function'`

// Sentinels the fetch script prefixes its result with, so one string
// return can carry either a response or a network failure.
const (
	statusPrefix     = "__STATUS_"
	fetchErrorPrefix = "__FETCH_ERROR__:"
)

// fetchScript signs the URL and fetches it from inside the page, so
// the request rides the page's cookies and TLS fingerprint. Signing
// yields either a rewritten URL or extra query parameters; when it
// throws, the fetch goes out unsigned, which some endpoints accept.
const fetchScript = `(async () => {
	let url = %s;
	try {
		const signed = window.byted_acrawler.frontierSign(url);
		if (typeof signed === 'string' && signed.length > 0) {
			url = signed;
		} else if (signed && typeof signed === 'object') {
			const u = new URL(url);
			for (const [k, v] of Object.entries(signed)) {
				u.searchParams.set(k, String(v));
			}
			url = u.toString();
		}
	} catch (e) {}
	try {
		const r = await fetch(url, {
			method: 'GET',
			credentials: 'include',
			headers: { 'Accept': 'application/json, text/plain, */*' },
		});
		const body = await r.text();
		return '` + statusPrefix + `' + r.status + '__' + body;
	} catch (e) {
		return '` + fetchErrorPrefix + `' + (e && e.message ? e.message : String(e));
	}
})()`

// FetchOutcome is the raw result of one in-page fetch.
type FetchOutcome struct {
	HTTPStatus int
	Body       []byte
}

// ensureSigner waits for the signing runtime to appear, revisiting
// public pages to coax the site into loading it. The result is
// memoized; once seen, the runtime stays for the life of the tab.
func (e *engine) ensureSigner(ctx context.Context) error {
	if e.signerReady {
		return nil
	}

	base := strings.TrimRight(e.cfg.TikTok.BaseURL, "/")
	stops := []string{base + "/foryou", base, base + "/@tiktok"}
	backoff := &retry.UniformBackoff{
		MinDelay: e.cfg.Acquisition.RetryDelayMin,
		MaxDelay: e.cfg.Acquisition.RetryDelayMax,
	}

	for check := 1; check <= maxSignerChecks; check++ {
		var ready bool
		if err := e.runner.Evaluate(ctx, signerProbeScript, &ready); err == nil && ready {
			e.signerReady = true
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if check == maxSignerChecks {
			break
		}

		e.log.WarnWithFields("signing runtime not loaded yet, revisiting site", map[string]interface{}{
			"check": check,
		})
		if err := e.runner.Navigate(ctx, stops[rand.Intn(len(stops))]); err != nil {
			e.log.DebugWithFields("signer recovery navigation had issues", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if err := retry.Wait(ctx, backoff.NextDelay(check)); err != nil {
			return err
		}
	}

	return &errs.Error{
		Type:    errs.ErrorTypeSigning,
		Message: fmt.Sprintf("signing runtime not available after %d checks", maxSignerChecks),
	}
}

// signAndFetch runs the fetch script against the live tab and decodes
// its sentinel result.
func (e *engine) signAndFetch(ctx context.Context, url string) (FetchOutcome, error) {
	script := fmt.Sprintf(fetchScript, strconv.Quote(url))

	var raw string
	if err := e.runner.EvaluateAsync(ctx, script, &raw); err != nil {
		var acq *errs.Error
		if errors.As(err, &acq) {
			return FetchOutcome{}, err
		}
		if ctx.Err() != nil {
			return FetchOutcome{}, err
		}
		return FetchOutcome{}, &errs.Error{
			Type:    errs.ErrorTypeTransport,
			Message: fmt.Sprintf("fetch script failed: %v", err),
		}
	}
	return parseFetchResult(raw)
}

// parseFetchResult splits the sentinel-prefixed script result into an
// HTTP status and body, or a transport error.
func parseFetchResult(raw string) (FetchOutcome, error) {
	if strings.HasPrefix(raw, fetchErrorPrefix) {
		return FetchOutcome{}, &errs.Error{
			Type:    errs.ErrorTypeTransport,
			Message: fmt.Sprintf("in-page fetch failed: %s", strings.TrimPrefix(raw, fetchErrorPrefix)),
		}
	}
	if strings.HasPrefix(raw, statusPrefix) {
		rest := raw[len(statusPrefix):]
		sep := strings.Index(rest, "__")
		if sep < 0 {
			return FetchOutcome{}, &errs.Error{
				Type:    errs.ErrorTypeTransport,
				Message: "malformed fetch result: missing status separator",
			}
		}
		status, err := strconv.Atoi(rest[:sep])
		if err != nil {
			return FetchOutcome{}, &errs.Error{
				Type:    errs.ErrorTypeTransport,
				Message: fmt.Sprintf("malformed fetch result: bad status %q", rest[:sep]),
			}
		}
		return FetchOutcome{HTTPStatus: status, Body: []byte(rest[sep+2:])}, nil
	}
	return FetchOutcome{}, &errs.Error{
		Type:    errs.ErrorTypeTransport,
		Message: "unrecognized fetch result",
	}
}

// classify turns a raw fetch outcome into a decoded payload or a typed
// error that tells the retry loop how to react.
func classify(ep Endpoint, outcome FetchOutcome) (map[string]interface{}, error) {
	body := bytes.TrimSpace(outcome.Body)
	if len(body) < minBodyLength {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeTransient,
			Message: "empty or truncated body",
			Code:    outcome.HTTPStatus,
		}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		if outcome.HTTPStatus >= 400 && !errs.IsRetryableStatusCode(outcome.HTTPStatus) {
			return nil, &errs.Error{
				Type:    errs.ErrorTypeEndpoint,
				Message: fmt.Sprintf("endpoint returned HTTP %d with a non-JSON body", outcome.HTTPStatus),
				Code:    outcome.HTTPStatus,
			}
		}
		return nil, &errs.Error{
			Type:    errs.ErrorTypeTransient,
			Message: "malformed payload",
			Code:    outcome.HTTPStatus,
		}
	}

	code, hasCode := statusCodeOf(payload)
	if ep.BlockCode != 0 && hasCode && code == ep.BlockCode {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeHardBlock,
			Message: fmt.Sprintf("endpoint refused the target with status %d", code),
			Code:    code,
		}
	}
	if (hasCode && code == 0) || hasAnyKey(payload, ep.SuccessKeys) {
		return payload, nil
	}
	if hasCode {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeEndpoint,
			Message: fmt.Sprintf("endpoint reported status %d", code),
			Code:    code,
		}
	}
	return nil, &errs.Error{
		Type:    errs.ErrorTypeEndpoint,
		Message: fmt.Sprintf("payload carries none of the expected keys %v", ep.SuccessKeys),
	}
}

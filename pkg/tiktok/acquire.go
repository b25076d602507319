package tiktok

import (
	"context"
	"strings"
	"time"

	"tokscraper/pkg/browser"
	"tokscraper/pkg/config"
	errs "tokscraper/pkg/errors"
	"tokscraper/pkg/logger"
	"tokscraper/pkg/retry"
)

// recoveryPath is where transient-failure recovery navigates. A public
// feed page reliably reissues cookies without needing a target.
const recoveryPath = "/foryou"

// engine executes single endpoint calls: session params, signing,
// in-page fetch, classification and the retry loop around them all.
//
// Not safe for concurrent use. Each execution context owns one.
type engine struct {
	runner  browser.Runner
	cfg     *config.Config
	log     logger.Logger
	session *SessionParams

	signerReady bool
}

func newEngine(runner browser.Runner, cfg *config.Config, log logger.Logger) *engine {
	return &engine{
		runner:  runner,
		cfg:     cfg,
		log:     log,
		session: NewSessionParams(runner, cfg, log),
	}
}

// invalidateSession drops the memoized session parameters so the next
// attempt presents a fresh identity.
func (e *engine) invalidateSession() {
	e.session.Invalidate()
	sessionInvalidationsTotal.Inc()
}

// Fetch calls one endpoint and returns its decoded payload. Retries,
// recovery navigation and context restarts all happen inside; the
// caller sees either a payload or the final typed error.
func (e *engine) Fetch(ctx context.Context, ep Endpoint, overrides map[string]string) (map[string]interface{}, error) {
	var payload map[string]interface{}

	op := func() error {
		fetchAttemptsTotal.WithLabelValues(ep.Key).Inc()

		params, err := e.session.ParamsFor(ctx, ep, overrides)
		if err != nil {
			return err
		}

		// The token cookie rotates as the session ages, so it is read
		// fresh on every attempt. Absent is fine; the configured token
		// covers cold starts.
		token, err := e.runner.SessionToken(ctx)
		if err != nil {
			e.log.DebugWithFields("session token read failed", map[string]interface{}{
				"error": err.Error(),
			})
			token = ""
		}
		if token == "" {
			token = e.cfg.TikTok.MSToken
		}
		params["msToken"] = token

		url := BuildURL(e.cfg.TikTok.BaseURL, ep, params)

		if err := e.ensureSigner(ctx); err != nil {
			return err
		}

		start := time.Now()
		outcome, err := e.signAndFetch(ctx, url)
		if err != nil {
			return err
		}
		logger.LogEndpointCall(ep.Key, url, outcome.HTTPStatus, time.Since(start).Seconds())

		payload, err = classify(ep, outcome)
		return err
	}

	cfg := &retry.Config{
		MaxAttempts: e.cfg.Acquisition.MaxAttempts,
		Backoff: &retry.UniformBackoff{
			MinDelay: e.cfg.Acquisition.RetryDelayMin,
			MaxDelay: e.cfg.Acquisition.RetryDelayMax,
		},
		RetryIf: retry.DefaultRetryIf,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			e.onRetry(ctx, ep, attempt, err, delay)
		},
		Context: ctx,
		Logger:  e.log,
	}

	if err := retry.Do(op, cfg); err != nil {
		errType := errs.TypeOf(err)
		fetchOutcomesTotal.WithLabelValues(ep.Key, string(errType)).Inc()
		if errType == errs.ErrorTypeHardBlock {
			hardBlocksTotal.WithLabelValues(ep.Key).Inc()
		}
		return nil, err
	}
	fetchOutcomesTotal.WithLabelValues(ep.Key, "success").Inc()
	return payload, nil
}

// onRetry runs between attempts: it records the retry, rotates the
// session identity once failures repeat, and applies the recovery that
// fits the error class.
func (e *engine) onRetry(ctx context.Context, ep Endpoint, attempt int, err error, delay time.Duration) {
	errType := errs.TypeOf(err)
	retriesTotal.WithLabelValues(ep.Key, string(errType)).Inc()
	retryDelaySeconds.Observe(delay.Seconds())
	logger.LogRetry(ep.Key, attempt, string(errType), delay)

	if attempt >= 2 {
		e.invalidateSession()
		logger.LogSessionInvalidation(ep.Key, attempt)
	}

	switch errType {
	case errs.ErrorTypeTransient:
		// Empty or mangled bodies usually mean the session went stale;
		// touching a public page brings it back.
		base := strings.TrimRight(e.cfg.TikTok.BaseURL, "/")
		if nerr := e.runner.Navigate(ctx, base+recoveryPath); nerr != nil {
			e.log.DebugWithFields("recovery navigation had issues", map[string]interface{}{
				"error": nerr.Error(),
			})
		}
	case errs.ErrorTypeTransport, errs.ErrorTypeContext:
		if !e.runner.Healthy(ctx) {
			logger.LogContextRestart(string(errType))
			if rerr := e.runner.Restart(ctx); rerr != nil {
				e.log.ErrorWithFields("browser restart failed", map[string]interface{}{
					"error": rerr.Error(),
				})
			}
		}
	}
}

package browser

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"tokscraper/pkg/config"
	"tokscraper/pkg/cookies"
	errs "tokscraper/pkg/errors"
	"tokscraper/pkg/logger"
	"tokscraper/pkg/retry"
)

// Runner is the surface endpoint calls need from a live browser tab.
// ExecutionContext implements it; tests substitute fakes.
type Runner interface {
	// Navigate loads a URL and waits for the document body
	Navigate(ctx context.Context, url string) error
	// Evaluate runs a synchronous expression and unmarshals the result
	Evaluate(ctx context.Context, script string, out interface{}) error
	// EvaluateAsync runs an expression that yields a promise and waits
	// for it to settle
	EvaluateAsync(ctx context.Context, script string, out interface{}) error
	// WarmUp replays the page walk that primes cookies and the signer
	WarmUp(ctx context.Context) error
	// SessionToken reads the msToken cookie, "" when absent
	SessionToken(ctx context.Context) (string, error)
	// Restart tears the tab down and brings a fresh, warmed one up
	Restart(ctx context.Context) error
	// Healthy reports whether the tab still answers
	Healthy(ctx context.Context) bool
}

var _ Runner = (*ExecutionContext)(nil)

// ExecutionContext manages one headless Chrome tab. All endpoint
// traffic flows through its page so requests carry the browser's TLS
// fingerprint, cookies and signing runtime. Methods are safe for use
// from a single goroutine; batch workers each get their own context.
type ExecutionContext struct {
	id  string
	cfg *config.Config
	log logger.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	started  bool
	restarts int
	mu       sync.Mutex
}

// New creates an execution context. Start must be called before use.
func New(cfg *config.Config, log logger.Logger) *ExecutionContext {
	id := uuid.New().String()
	return &ExecutionContext{
		id:  id,
		cfg: cfg,
		log: log.WithField("context_id", id[:8]),
	}
}

// ID returns the unique identifier for this context.
func (ec *ExecutionContext) ID() string {
	return ec.id
}

// Restarts returns how many times the underlying browser was replaced.
func (ec *ExecutionContext) Restarts() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.restarts
}

// Start launches the browser with retry. Startup is the one failure
// the pipeline treats as fatal: without a tab nothing else can run.
func (ec *ExecutionContext) Start(ctx context.Context) error {
	ec.mu.Lock()
	if ec.started {
		ec.mu.Unlock()
		return nil
	}
	ec.mu.Unlock()

	attempts := ec.cfg.Browser.StartupAttempts
	cfg := &retry.Config{
		MaxAttempts: attempts,
		Backoff: &retry.LinearBackoff{
			BaseDelay: 2 * time.Second,
			MaxDelay:  10 * time.Second,
			Increment: 2 * time.Second,
		},
		RetryIf: func(err error) bool { return ctx.Err() == nil },
		Context: ctx,
		Logger:  ec.log,
	}

	if err := startWithRetry(func() error { return ec.launch(ctx) }, cfg); err != nil {
		return err
	}

	ec.mu.Lock()
	ec.started = true
	ec.mu.Unlock()

	ec.log.Info("browser context started")
	return nil
}

// startWithRetry runs launch attempts under the startup budget. Budget
// exhaustion maps to the startup class, the only error the pipeline
// treats as fatal.
func startWithRetry(launch func() error, cfg *retry.Config) error {
	if err := retry.Do(launch, cfg); err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeStartup,
			Message: fmt.Sprintf("browser failed to start after %d attempts: %v", cfg.MaxAttempts, err),
		}
	}
	return nil
}

// launch performs a single startup attempt, cleaning up after itself
// on failure so the next attempt begins from scratch.
func (ec *ExecutionContext) launch(ctx context.Context) error {
	startupAttemptsTotal.Inc()
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, ec.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	probeCtx, probeCancel := context.WithTimeout(tabCtx, ec.cfg.Browser.NavigationTimeout)
	defer probeCancel()

	// The first Run spawns the Chrome process; about:blank proves it
	// answers before we commit to this instance.
	if err := chromedp.Run(probeCtx,
		stealthTasks(),
		chromedp.Navigate("about:blank"),
	); err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("browser failed to respond: %w", err)
	}

	ec.mu.Lock()
	ec.allocCtx, ec.allocCancel = allocCtx, allocCancel
	ec.tabCtx, ec.tabCancel = tabCtx, tabCancel
	ec.mu.Unlock()
	return nil
}

func (ec *ExecutionContext) allocatorOptions() []chromedp.ExecAllocatorOption {
	b := ec.cfg.Browser
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(b.WindowWidth, b.WindowHeight),
		chromedp.UserAgent(ec.cfg.TikTok.UserAgent),
	)
	if b.Headless {
		// The new headless mode renders closer to a regular window
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if b.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(b.ChromePath))
	}
	return opts
}

// run executes chromedp actions against the live tab under a timeout,
// honoring the caller's cancellation as well.
func (ec *ExecutionContext) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	ec.mu.Lock()
	tab := ec.tabCtx
	ec.mu.Unlock()

	if tab == nil {
		return &errs.Error{Type: errs.ErrorTypeContext, Message: "browser context not started"}
	}

	runCtx, cancel := context.WithTimeout(tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if tab.Err() != nil {
			return &errs.Error{Type: errs.ErrorTypeContext, Message: fmt.Sprintf("browser context lost: %v", err)}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads a URL, waits for the body, then idles briefly the way
// a person would before acting on the page.
func (ec *ExecutionContext) Navigate(ctx context.Context, url string) error {
	ec.log.DebugWithFields("navigating", map[string]interface{}{"url": url})

	if err := ec.run(ctx, ec.cfg.Browser.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return err
	}
	return ec.settle(ctx, 2*time.Second)
}

// warmUpStops derives the page walk from the base URL and profile.
func warmUpStops(baseURL, profile string) []string {
	base := strings.TrimRight(baseURL, "/")
	stops := []string{base, base + "/foryou"}
	if profile != "" {
		stops = append(stops, base+"/@"+profile)
	}
	return stops
}

// WarmUp visits a few public pages so the site issues session cookies
// and loads its signing runtime. The first stop must succeed; later
// ones are nice to have and a slow page should not kill the run.
func (ec *ExecutionContext) WarmUp(ctx context.Context) error {
	stops := warmUpStops(ec.cfg.TikTok.BaseURL, ec.cfg.Browser.WarmUpProfile)

	ec.log.InfoWithFields("warming up session", map[string]interface{}{"stops": len(stops)})

	for i, url := range stops {
		err := ec.Navigate(ctx, url)
		if err == nil {
			continue
		}
		if i == 0 || ctx.Err() != nil {
			return fmt.Errorf("warm-up navigation to %s: %w", url, err)
		}
		ec.log.WarnWithFields("warm-up navigation had issues (continuing anyway)", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}

	ec.log.Info("session warm-up complete")
	return nil
}

// settle idles for base plus up to 800ms of jitter so the gap between
// navigations is never suspiciously constant.
func (ec *ExecutionContext) settle(ctx context.Context, base time.Duration) error {
	delay := base + time.Duration(rand.Int63n(int64(800*time.Millisecond)))
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InjectCookies pushes a jar into the session and reloads so the page
// picks the cookies up. Individual bad cookies are skipped rather than
// fatal; real exports tend to carry a few stale entries.
func (ec *ExecutionContext) InjectCookies(ctx context.Context, jar []cookies.Cookie) error {
	if len(jar) == 0 {
		return nil
	}

	var skipped int
	err := ec.run(ctx, ec.cfg.Browser.NavigationTimeout,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range jar {
				c = c.Normalize()
				p := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithHTTPOnly(c.HTTPOnly).
					WithSecure(c.Secure)
				if !c.Expires.IsZero() {
					exp := cdp.TimeSinceEpoch(c.Expires)
					p = p.WithExpires(&exp)
				}
				if err := p.Do(ctx); err != nil {
					skipped++
				}
			}
			return nil
		}),
		chromedp.Reload(),
	)
	if err != nil {
		return fmt.Errorf("failed to inject cookies: %w", err)
	}

	if skipped > 0 {
		ec.log.WarnWithFields("some cookies could not be set", map[string]interface{}{
			"skipped": skipped,
			"total":   len(jar),
		})
	}
	return ec.settle(ctx, 1500*time.Millisecond)
}

// Cookies returns the session's current cookies, including HttpOnly
// ones that page JavaScript cannot see.
func (ec *ExecutionContext) Cookies(ctx context.Context) ([]cookies.Cookie, error) {
	var raw []*network.Cookie
	err := ec.run(ctx, ec.cfg.Browser.NavigationTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	jar := make([]cookies.Cookie, 0, len(raw))
	for _, c := range raw {
		ck := cookies.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			ck.Expires = time.Unix(int64(c.Expires), 0)
		}
		jar = append(jar, ck)
	}
	return jar, nil
}

// SessionToken reads the msToken cookie the site issues during
// warm-up. An absent token is not an error; it just means search
// results will be thinner.
func (ec *ExecutionContext) SessionToken(ctx context.Context) (string, error) {
	jar, err := ec.Cookies(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range jar {
		if c.Name == "msToken" {
			return c.Value, nil
		}
	}
	return "", nil
}

// Evaluate runs a synchronous expression in the page.
func (ec *ExecutionContext) Evaluate(ctx context.Context, script string, out interface{}) error {
	return ec.run(ctx, ec.cfg.Browser.ScriptTimeout,
		chromedp.Evaluate(script, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true)
		}),
	)
}

// EvaluateAsync runs an expression that yields a promise and waits for
// it to settle. Endpoint fetches run through here, so the script
// timeout bounds the whole request.
func (ec *ExecutionContext) EvaluateAsync(ctx context.Context, script string, out interface{}) error {
	return ec.run(ctx, ec.cfg.Browser.ScriptTimeout,
		chromedp.Evaluate(script, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithAwaitPromise(true)
		}),
	)
}

// Healthy reports whether the tab still answers a trivial evaluation.
func (ec *ExecutionContext) Healthy(ctx context.Context) bool {
	ec.mu.Lock()
	tab := ec.tabCtx
	ec.mu.Unlock()
	if tab == nil || tab.Err() != nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var answer int
	if err := ec.Evaluate(probeCtx, "1", &answer); err != nil {
		return false
	}
	return answer == 1
}

// Restart tears the tab down and brings up a fresh, warmed one.
func (ec *ExecutionContext) Restart(ctx context.Context) error {
	ec.mu.Lock()
	ec.restarts++
	n := ec.restarts
	ec.mu.Unlock()

	contextRestartsTotal.Inc()
	ec.log.WarnWithFields("restarting browser context", map[string]interface{}{"restart": n})

	if err := ec.Close(); err != nil {
		ec.log.DebugWithFields("close before restart reported an error", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := ec.Start(ctx); err != nil {
		return err
	}
	return ec.WarmUp(ctx)
}

// Close terminates the tab and the browser process behind it.
func (ec *ExecutionContext) Close() error {
	ec.mu.Lock()
	tab := ec.tabCtx
	tabCancel := ec.tabCancel
	allocCancel := ec.allocCancel
	ec.tabCtx, ec.tabCancel = nil, nil
	ec.allocCtx, ec.allocCancel = nil, nil
	ec.started = false
	ec.mu.Unlock()

	var err error
	if tab != nil {
		// Cancel waits for the browser to shut down cleanly
		err = chromedp.Cancel(tab)
	}
	if tabCancel != nil {
		tabCancel()
	}
	if allocCancel != nil {
		allocCancel()
	}
	return err
}

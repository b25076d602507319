// Package browser manages the headless Chrome session every endpoint
// call rides through.
//
// TikTok's hidden web API rejects plain HTTP clients: requests must
// carry a signature produced by the site's own JavaScript and arrive
// with the TLS fingerprint, cookies and headers of the browser that
// produced it. So instead of an http.Client, the pipeline holds an
// ExecutionContext, a long-lived tab that is started once, warmed up
// by walking a few public pages, and then used to run fetch() calls
// in-page.
//
// Lifecycle:
//
//	ec := browser.New(cfg, log)
//	if err := ec.Start(ctx); err != nil {
//	    // startup is the one fatal failure
//	}
//	defer ec.Close()
//
//	if err := ec.WarmUp(ctx); err != nil { ... }
//
// Startup retries a few times with linear backoff and probes
// about:blank before committing to an instance. The stealth script is
// registered before any navigation so the site's bootstrap never sees
// automation markers.
//
// The Runner interface is the narrow surface the endpoint layer
// consumes; tests implement it with fakes so no Chrome is needed.
package browser

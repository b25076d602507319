// Package tiktok drives TikTok's hidden JSON endpoints through a live
// browser tab, so every call carries real cookies, a real TLS
// fingerprint and the site's own URL signature.
//
// This package includes:
//   - A descriptor table for the seventeen known endpoints
//   - Session parameter synthesis probed from the live page
//   - In-page signed fetch with retry, recovery and classification
//   - Cursor pagination with per-endpoint failure policies
//   - A client exposing one operation per endpoint
//
// Example usage:
//
//	ec := browser.New(cfg, log)
//	if err := ec.Start(ctx); err != nil {
//	    // Startup is the one fatal failure
//	    return err
//	}
//	defer ec.Close()
//	if err := ec.WarmUp(ctx); err != nil {
//	    return err
//	}
//
//	client := tiktok.NewClient(ec, cfg, log)
//
//	// Collect a user's recent videos
//	videos, err := client.UserVideos(ctx, "somecreator", 50)
//	if err != nil {
//	    var acqErr *errors.Error
//	    if stderrors.As(err, &acqErr) && acqErr.Type == errors.ErrorTypeHardBlock {
//	        // Session is burned for this target
//	    }
//	}
//
// Clients and the execution context behind them are single-goroutine;
// concurrent collection uses one client per worker.
package tiktok

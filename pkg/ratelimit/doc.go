// Package ratelimit paces calls to TikTok's hidden web API.
//
// Every endpoint call already runs through a real browser context and
// carries navigation latency, and the retry engine adds its own jitter
// between attempts. The limiter sits above both and enforces a global
// ceiling so long pagination runs and batch jobs cannot hammer the
// endpoints.
//
// Available Implementations:
//
// Token Bucket:
//   - Admits bursts up to the configured burst size
//   - Refills continuously at requests_per_minute tokens per minute
//   - Default strategy
//
// Sliding Window:
//   - Tracks call timestamps within a rolling one-minute window
//   - Admits at most requests_per_minute calls in any window
//   - Smoother ceiling for long unattended runs
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a call is allowed
//   - Wait() - Block until a call is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	pacer := ratelimit.New(cfg.RateLimit.Strategy,
//		cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
//
//	// Block until allowed, then issue the endpoint call
//	pacer.Wait()
package ratelimit

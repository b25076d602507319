// Package retry provides backoff and retry logic for handling transient
// failures, particularly for signed in-page endpoint calls.
//
// Features:
//   - Multiple backoff strategies (exponential, linear, constant, uniform)
//   - Jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Configurable retry predicates
//   - Integration with the acquisition error types
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return ctx.Navigate(url)
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 5,
//		Backoff:     retry.DefaultUniformBackoff(),
//		RetryIf:     retry.DefaultRetryIf,
//		Logger:      logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// Endpoint calls use UniformBackoff: every delay is drawn uniformly from a
// fixed window (2s-4s by default) so the retry cadence stays irregular
// instead of marching in exponential lockstep. Browser startup uses
// LinearBackoff so each relaunch waits a bit longer than the last.
//
// Non-retryable error types (startup, signing, hard_block) short-circuit the
// loop; the caller decides how to degrade.
package retry

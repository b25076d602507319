package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Limiter defines the interface for pacing endpoint calls
type Limiter interface {
	// Allow checks if a call is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another call
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// Strategy names accepted by New.
const (
	StrategyTokenBucket   = "token_bucket"
	StrategySlidingWindow = "sliding_window"
)

// New builds a Limiter for the configured strategy. The token bucket
// admits bursts of up to burst calls and refills at perMinute tokens
// per minute; the sliding window admits at most perMinute calls in
// any rolling minute. Unknown strategies fall back to the token bucket.
func New(strategy string, perMinute, burst int) Limiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	switch strings.ToLower(strategy) {
	case StrategySlidingWindow:
		return NewSlidingWindow(perMinute, time.Minute)
	default:
		if burst <= 0 {
			burst = 1
		}
		return NewTokenBucket(burst, perMinute)
	}
}

// TokenBucket implements a token bucket rate limiter that refills
// continuously at a fixed rate
type TokenBucket struct {
	capacity   float64 // Maximum number of tokens (burst size)
	tokens     float64 // Current number of tokens
	ratePerSec float64 // Refill rate in tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a bucket holding capacity tokens that refills
// at perMinute tokens per minute
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		ratePerSec: float64(perMinute) / 60.0,
		lastRefill: time.Now(),
	}
}

// Allow checks if a call can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.mu.Lock()
		// Small sleep to prevent busy waiting
		wait := 100 * time.Millisecond
		if tb.ratePerSec > 0 {
			deficit := 1 - tb.tokens
			wait = time.Duration(deficit / tb.ratePerSec * float64(time.Second))
		}
		tb.mu.Unlock()

		if wait <= 0 {
			wait = 50 * time.Millisecond
		}
		time.Sleep(wait)
	}
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill adds tokens based on elapsed time, capped at capacity
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	tb.tokens += elapsed * tb.ratePerSec
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

// SlidingWindow implements a sliding window rate limiter
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a new sliding window rate limiter
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
	}
}

// Allow checks if a call can proceed
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.evictExpired(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}

	return false
}

// Wait blocks until a call is allowed
func (sw *SlidingWindow) Wait() {
	for !sw.Allow() {
		sw.mu.Lock()
		if len(sw.requests) > 0 {
			oldest := sw.requests[0]
			timeToWait := sw.windowSize - time.Since(oldest)
			sw.mu.Unlock()

			if timeToWait > 0 {
				time.Sleep(timeToWait)
			}
		} else {
			sw.mu.Unlock()
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Reset clears all recorded calls
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
}

// evictExpired removes calls outside the sliding window
func (sw *SlidingWindow) evictExpired(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	i := 0
	for i < len(sw.requests) && sw.requests[i].Before(cutoff) {
		i++
	}

	if i > 0 {
		copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:len(sw.requests)-i]
	}
}

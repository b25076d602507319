package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	// Burst of 5, refilling one token per second
	tb := NewTokenBucket(5, 60)

	// Test initial burst capacity
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	// Test exhaustion
	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}

	// Test refill after waiting
	time.Sleep(1100 * time.Millisecond)
	if !tb.Allow() {
		t.Error("Expected a token after the refill interval")
	}

	// Test reset
	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}

func TestTokenBucketRefillIsCapped(t *testing.T) {
	tb := NewTokenBucket(2, 600)

	tb.mu.Lock()
	tb.refill(tb.lastRefill.Add(time.Hour))
	if tb.tokens != tb.capacity {
		t.Errorf("Expected refill capped at capacity %v, got %v", tb.capacity, tb.tokens)
	}
	tb.mu.Unlock()
}

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, time.Second)

	// Test initial requests
	for i := 0; i < 3; i++ {
		if !sw.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// Test limit reached
	if sw.Allow() {
		t.Error("Expected request to be denied when limit is reached")
	}

	// Test window sliding
	time.Sleep(time.Second + 100*time.Millisecond)
	if !sw.Allow() {
		t.Error("Expected request to be allowed after window slides")
	}

	// Test reset
	sw.Reset()
	if len(sw.requests) != 0 {
		t.Error("Expected requests to be cleared after reset")
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	if _, ok := New(StrategySlidingWindow, 30, 5).(*SlidingWindow); !ok {
		t.Error("Expected a sliding window limiter")
	}
	if _, ok := New(StrategyTokenBucket, 30, 5).(*TokenBucket); !ok {
		t.Error("Expected a token bucket limiter")
	}
	if _, ok := New("", 0, 0).(*TokenBucket); !ok {
		t.Error("Expected the token bucket fallback for an unknown strategy")
	}
}

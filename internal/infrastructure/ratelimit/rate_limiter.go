package ratelimit

import (
	"sync"
	"time"
)

// Actions throttled per user.
const (
	ActionOpenConversation = "open_conversation"
	ActionSendMessage      = "send_message"
	ActionTyping           = "typing"
)

type bucketConfig struct {
	maxTokens  int
	refillRate int
	refillTime time.Duration
}

// Per-action budgets. Typing is generous because clients emit it on every
// keystroke pause; overflow there is dropped silently upstream.
var actionConfigs = map[string]bucketConfig{
	ActionOpenConversation: {maxTokens: 5, refillRate: 1, refillTime: 10 * time.Second},
	ActionSendMessage:      {maxTokens: 20, refillRate: 5, refillTime: 10 * time.Second},
	ActionTyping:           {maxTokens: 60, refillRate: 30, refillTime: 10 * time.Second},
}

// TokenBucket is a refilling counter guarding one (user, action) pair.
type TokenBucket struct {
	tokens     int
	maxTokens  int
	refillRate int
	refillTime time.Duration
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(cfg bucketConfig) *TokenBucket {
	return &TokenBucket{
		tokens:     cfg.maxTokens,
		maxTokens:  cfg.maxTokens,
		refillRate: cfg.refillRate,
		refillTime: cfg.refillTime,
		lastRefill: time.Now(),
	}
}

// Allow consumes a token if one is available, otherwise reports how long the
// caller should wait for the next refill.
func (tb *TokenBucket) Allow() (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	if refills := int(elapsed / tb.refillTime); refills > 0 {
		tb.tokens += refills * tb.refillRate
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}

	return false, tb.lastRefill.Add(tb.refillTime).Sub(now)
}

// RateLimiter holds one bucket per (user, action) pair.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.RWMutex
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
	}
}

func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	cfg, ok := actionConfigs[action]
	if !ok {
		return true, 0
	}

	key := userID + ":" + action

	rl.mu.RLock()
	bucket, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.buckets[key]; !exists {
			bucket = newTokenBucket(cfg)
			rl.buckets[key] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket.Allow()
}

// StartCleanupRoutine periodically drops buckets that refilled to capacity so
// the map does not grow with every user ever seen.
func (rl *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			rl.mu.Lock()
			for key, bucket := range rl.buckets {
				bucket.mu.Lock()
				idle := bucket.tokens == bucket.maxTokens
				bucket.mu.Unlock()
				if idle {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}()
}

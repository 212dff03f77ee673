package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"bikedash.nycbikeshare.org/internal/clock"
)

const (
	cleanupInterval = 5 * time.Minute
	idleEviction    = 10 * time.Minute
)

// keyLimiter pairs an API key's token bucket with the last time the key was
// seen, so idle keys can be evicted without touching active ones.
type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimitMiddleware throttles requests per API key. Keys listed as exempt
// bypass the limiter entirely; requests without a key share one bucket.
type RateLimitMiddleware struct {
	mu       sync.RWMutex
	limiters map[string]*keyLimiter

	limit      rate.Limit
	burst      int
	exemptKeys map[string]bool

	clock       clock.Clock
	cleanupTick *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewRateLimitMiddleware allows ratePerInterval requests per interval for
// each API key. Zero means no requests at all; negative disables limiting.
func NewRateLimitMiddleware(ratePerInterval int, interval time.Duration, exemptKeys []string, clk clock.Clock) *RateLimitMiddleware {
	limit := rate.Inf
	switch {
	case ratePerInterval == 0:
		limit = 0
	case ratePerInterval > 0:
		limit = rate.Every(interval / time.Duration(ratePerInterval))
	}

	exempt := make(map[string]bool, len(exemptKeys))
	for _, key := range exemptKeys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			exempt[trimmed] = true
		}
	}

	rl := &RateLimitMiddleware{
		limiters:    make(map[string]*keyLimiter),
		limit:       limit,
		burst:       ratePerInterval,
		exemptKeys:  exempt,
		clock:       clk,
		cleanupTick: time.NewTicker(cleanupInterval),
		stopChan:    make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Handler returns the middleware wrapper for SetRoutes.
func (rl *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.URL.Query().Get("key")
			if apiKey == "" {
				apiKey = "__no_key__"
			}

			if rl.exemptKeys[apiKey] {
				next.ServeHTTP(w, r)
				return
			}

			if !rl.limiterFor(apiKey).Allow() {
				rl.sendRateLimitExceeded(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// limiterFor returns the key's limiter, creating it on first sight, and
// refreshes the key's lastSeen stamp.
func (rl *RateLimitMiddleware) limiterFor(apiKey string) *rate.Limiter {
	now := rl.clock.Now().UnixNano()

	rl.mu.RLock()
	if client, ok := rl.limiters[apiKey]; ok {
		client.lastSeen.Store(now)
		rl.mu.RUnlock()
		return client.limiter
	}
	rl.mu.RUnlock()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Lost the race to another request for the same key.
	if client, ok := rl.limiters[apiKey]; ok {
		client.lastSeen.Store(now)
		return client.limiter
	}

	client := &keyLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	client.lastSeen.Store(now)
	rl.limiters[apiKey] = client

	return client.limiter
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	var retryAfter time.Duration
	switch rl.limit {
	case 0:
		retryAfter = time.Hour
	case rate.Inf:
		retryAfter = time.Second
	default:
		retryAfter = time.Duration(1) / time.Duration(rl.limit)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	body := map[string]interface{}{
		"code":        http.StatusTooManyRequests,
		"text":        "Rate limit exceeded. Please try again later.",
		"data":        nil,
		"currentTime": rl.clock.Now().UnixMilli(),
		"version":     2,
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode rate limit response", "error", err)
	}
}

// cleanupOnce evicts keys idle longer than the eviction threshold. Split out
// from the background loop so tests can drive it with a mock clock.
func (rl *RateLimitMiddleware) cleanupOnce() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()

	for key, client := range rl.limiters {
		if rl.exemptKeys[key] {
			continue
		}
		lastSeen := client.lastSeen.Load()
		if lastSeen == 0 {
			continue
		}
		if now.Sub(time.Unix(0, lastSeen)) > idleEviction {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimitMiddleware) cleanupLoop() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.cleanupOnce()
		case <-rl.stopChan:
			return
		}
	}
}

// Stop halts the background cleanup goroutine. Safe to call more than once;
// in-flight requests are unaffected.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
		rl.cleanupTick.Stop()
	})
}

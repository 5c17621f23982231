package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBurstThenRefill(t *testing.T) {
	now := time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst should pass", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("burst exhausted, request should be rejected")
	}

	now = now.Add(2 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("tokens should have refilled after 2s at 1 rps")
	}
	if !rl.Allow("10.0.0.1") {
		t.Fatal("second refilled token should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("refill must not exceed elapsed time")
	}
}

func TestRateLimiterIsolatesCallers(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.2") {
		t.Fatal("each caller gets its own bucket")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("first caller's bucket should be empty")
	}
}

func TestRateLimiterSweepsStaleBuckets(t *testing.T) {
	now := time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(staleBucketAfter + time.Minute)
	rl.Allow("10.0.0.2")

	rl.mu.Lock()
	_, stale := rl.buckets["10.0.0.1"]
	rl.mu.Unlock()
	if stale {
		t.Fatal("idle bucket should have been swept")
	}
}

func TestRateLimitMiddlewareRejectsWith429(t *testing.T) {
	mw := RateLimit(1, 1)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/tools", nil)
		req.Header.Set("X-Real-Ip", "203.0.113.9")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", code)
	}
}

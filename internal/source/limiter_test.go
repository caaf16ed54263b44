package source

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	limiter := NewLimiter(1.0, 2)

	if !limiter.Allow("tavily") {
		t.Error("First request should be allowed")
	}
	if !limiter.Allow("tavily") {
		t.Error("Second request should be allowed within burst")
	}
	if limiter.Allow("tavily") {
		t.Error("Third immediate request should exceed burst")
	}
}

func TestLimiter_IndependentBuckets(t *testing.T) {
	limiter := NewLimiter(1.0, 1)

	if !limiter.Allow("tavily") {
		t.Fatal("tavily first request should be allowed")
	}
	if limiter.Allow("tavily") {
		t.Error("tavily second request should be denied")
	}
	if !limiter.Allow("exa") {
		t.Error("exa should have its own untouched bucket")
	}
}

func TestLimiter_ProviderAdvertisedRate(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	fast := &stubProvider{name: "pubmed", rate: 1000, available: true}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := limiter.WaitProvider(ctx, fast); err != nil {
			t.Fatalf("Request %d should clear quickly at advertised rate: %v", i, err)
		}
	}
}

func TestLimiter_SetSourceRateOverride(t *testing.T) {
	limiter := NewLimiter(1.0, 1)

	if !limiter.Allow("crawler") {
		t.Fatal("First request should be allowed")
	}
	if limiter.Allow("crawler") {
		t.Fatal("Bucket should be drained")
	}

	limiter.SetSourceRate("crawler", 100, 5)
	if !limiter.Allow("crawler") {
		t.Error("Override should replace the drained bucket")
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	limiter.Allow("brave") // drain the single token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "brave"); err == nil {
		t.Error("Wait on an empty slow bucket should fail when the context expires")
	}
}

func TestLimiter_DefaultsForInvalidConfig(t *testing.T) {
	limiter := NewLimiter(-1, 0)

	if !limiter.Allow("tavily") {
		t.Error("Limiter with sanitized defaults should allow the first request")
	}
}

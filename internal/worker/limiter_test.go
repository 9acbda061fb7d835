package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://example.org/journal-home"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://publisher.example.net"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	if err := limiter.WaitWithDelay(ctx, "https://example.org", 50*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", elapsed)
	}
}

func TestLimiter_BurstExhaustion(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	url := "https://example.org"

	if err := limiter.Wait(ctx, url); err != nil {
		t.Errorf("first wait failed: %v", err)
	}
	if limiter.Allow(url) {
		t.Error("expected allow to fail after burst exhausted")
	}
	if !limiter.Allow("https://other.example.net") {
		t.Error("expected allow for an untouched domain")
	}
}

func TestLimiter_SetDomainRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetDomainRate("slow.example.org", 0.1, 1)

	if !limiter.Allow("https://slow.example.org") {
		t.Error("first request should pass")
	}
	if limiter.Allow("https://slow.example.org") {
		t.Error("second request should be throttled")
	}
	if !limiter.Allow("https://fast.example.org") {
		t.Error("other domain should keep the default rate")
	}
}

func TestExtractDomain(t *testing.T) {
	domain, err := extractDomain("https://example.org/about")
	if err != nil {
		t.Fatalf("extractDomain failed: %v", err)
	}
	if domain != "example.org" {
		t.Errorf("expected example.org, got %s", domain)
	}

	if _, err := extractDomain("::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

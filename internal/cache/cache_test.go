package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("https://api.openalex.org/sources?filter=issn:1234-5678")
	k2 := Key("https://api.openalex.org/sources?filter=issn:9999-9999")

	if !strings.HasPrefix(k1, "scholarlytrust:v1:") {
		t.Errorf("key missing version prefix: %s", k1)
	}
	if k1 == k2 {
		t.Error("distinct resources must hash to distinct keys")
	}
	if k1 != Key("https://api.openalex.org/sources?filter=issn:1234-5678") {
		t.Error("key must be deterministic")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("unexpected hit on empty cache")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, found := c.Get("k")
	if !found || string(got) != "v" {
		t.Errorf("get = %q/%v, want v/true", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("entry survived delete")
	}

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Set("b", []byte("2"), time.Minute)
	if err := c.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Error("entry survived clear")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("expired entry still served")
	}
}

func TestDiskCache(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if _, found := c.Get(Key("missing")); found {
		t.Error("unexpected hit on empty cache")
	}

	key := Key("snapshot")
	if err := c.Set(key, []byte("issn list"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, found := c.Get(key)
	if !found || string(got) != "issn list" {
		t.Errorf("get = %q/%v, want issn list/true", got, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("entry survived delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	key := Key("snapshot")
	if err := c.Set(key, []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get(key); found {
		t.Error("expired entry still served")
	}
}

func TestDiskCache_ZeroTTLUsesDefault(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := Key("snapshot")
	if err := c.Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, found := c.Get(key); !found {
		t.Error("entry with default TTL should still be fresh")
	}
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wonny/stockmarket/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestNewClient_Enabled(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), config.RedisConfig{
		Host:    mr.Host(),
		Port:    mr.Port(),
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	if !client.Enabled() {
		t.Error("Expected client to be enabled")
	}
}

func TestCache_Disabled(t *testing.T) {
	client, _ := New(context.Background(), config.RedisConfig{Enabled: false})
	cache := NewCache(client, "test")

	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}
	if err := cache.Set(context.Background(), "key", "v", 0); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestCache_RoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCache(client, KeyPrefix)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var got payload
	found, err := cache.Get(ctx, "missing", &got)
	if err != nil || found {
		t.Fatalf("Get(missing) = %v, %v; want miss", found, err)
	}

	if err := cache.Set(ctx, "p", payload{Name: "a", Count: 3}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("stockmarket:p") {
		t.Fatal("expected prefixed key to exist")
	}
	if ttl := mr.TTL("stockmarket:p"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	found, err = cache.Get(ctx, "p", &got)
	if err != nil || !found {
		t.Fatalf("Get(p) = %v, %v", found, err)
	}
	if got.Name != "a" || got.Count != 3 {
		t.Errorf("got %+v", got)
	}

	if err := cache.Delete(ctx, "p"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if mr.Exists("stockmarket:p") {
		t.Error("expected key to be deleted")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := New(context.Background(), config.RedisConfig{Enabled: false})
	limiter := NewRateLimiter(client, "test")

	cfg := RateLimitConfig{Key: "x", Limit: 3, Window: time.Second}
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != cfg.Limit {
		t.Errorf("Expected remaining = %d, got %d", cfg.Limit, remaining)
	}
}

func TestRateLimiter_Window(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client, "test")
	cfg := RateLimitConfig{Key: "client", Limit: 2, Window: time.Minute}
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		allowed, _, err := limiter.Allow(ctx, cfg)
		if err != nil {
			t.Fatalf("Allow() #%d error = %v", i, err)
		}
		if allowed != want {
			t.Errorf("Allow() #%d = %v, want %v", i, allowed, want)
		}
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"SnapshotKey", SnapshotKey("01HX"), "snapshot:01HX"},
		{"LatestSnapshotKey", LatestSnapshotKey(), "snapshot:latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

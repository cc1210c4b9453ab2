package cache

import (
	"context"
	"testing"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{"single part", []string{"trends"}},
		{"multiple parts", []string{"trends", "snapshot", "1h", "twitter"}},
		{"empty parts", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			// Hash should be consistent
			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}
}

func TestHashKeyDistinct(t *testing.T) {
	if HashKey("a", "b") == HashKey("a", "c") {
		t.Error("different parts should hash to different keys")
	}
}

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"simple key", "depth", "pulse:depth"},
		{"key with colon", "trends:snapshot:1h", "pulse:trends:snapshot:1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cache.NamespaceKey(tt.key); got != tt.expected {
				t.Errorf("NamespaceKey(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestSnapshotKey(t *testing.T) {
	if SnapshotKey("1h") != "trends:snapshot:1h" {
		t.Errorf("unexpected snapshot key: %s", SnapshotKey("1h"))
	}
}

func TestDisabledCache(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	if err := c.Close(); err != nil {
		t.Errorf("Close on disabled cache should be nil, got %v", err)
	}
	if _, err := c.QueueDepth(ctx); err != ErrCacheDisabled {
		t.Errorf("expected ErrCacheDisabled, got %v", err)
	}
	if err := c.PublishEvent(ctx, []byte(`{}`)); err != ErrCacheDisabled {
		t.Errorf("expected ErrCacheDisabled from PublishEvent, got %v", err)
	}
	if _, _, err := c.SubscribeEvents(ctx); err != ErrCacheDisabled {
		t.Errorf("expected ErrCacheDisabled from SubscribeEvents, got %v", err)
	}
	if err := c.InvalidateSnapshots(ctx); err != ErrCacheDisabled {
		t.Errorf("expected ErrCacheDisabled from InvalidateSnapshots, got %v", err)
	}
}

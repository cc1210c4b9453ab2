package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sentimenthq/pulse/pkg/config"
	"github.com/sentimenthq/pulse/pkg/logging"
)

// keyNamespace prefixes every cache key so the instance can share a Redis
const keyNamespace = "pulse"

// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
var ErrCacheDisabled = fmt.Errorf("cache is disabled")

// Cache wraps Redis client
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{client: client}, nil
}

// HashKey builds a stable cache key fragment from its parts
func HashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// NamespaceKey prefixes a key with the cache namespace
func (c *Cache) NamespaceKey(key string) string {
	return keyNamespace + ":" + key
}

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrCacheDisabled
	}
	return c.client.Get(ctx, c.NamespaceKey(key)).Result()
}

// Set sets a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Set(ctx, c.NamespaceKey(key), value, ttl).Err()
}

// Delete removes a key from cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Del(ctx, c.NamespaceKey(key)).Err()
}

// GetJSON retrieves a cached value and unmarshals it into out. Returns
// redis.Nil through the error when the key is absent.
func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

// SetJSON marshals value and stores it with TTL
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}

// SnapshotKey is the cache key for a realtime trend snapshot per window
func SnapshotKey(window string) string {
	return "trends:snapshot:" + window
}

// eventsChannel carries dashboard events from the worker process to the
// API servers' websocket hubs
const eventsChannel = "events"

// PublishEvent pushes a marshaled event onto the cross-process event channel
func (c *Cache) PublishEvent(ctx context.Context, payload []byte) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Publish(ctx, c.NamespaceKey(eventsChannel), payload).Err()
}

// SubscribeEvents subscribes to the cross-process event channel. The
// returned close function tears the subscription down.
func (c *Cache) SubscribeEvents(ctx context.Context) (<-chan *redis.Message, func() error, error) {
	if c == nil || c.client == nil {
		return nil, nil, ErrCacheDisabled
	}
	sub := c.client.Subscribe(ctx, c.NamespaceKey(eventsChannel))
	return sub.Channel(), sub.Close, nil
}

// snapshotWindows mirrors the windows the dashboard requests snapshots for
var snapshotWindows = []string{"5m", "15m", "1h", "6h", "24h", "7d"}

// InvalidateSnapshots drops every cached trend snapshot, forcing the next
// realtime request per window to recompute
func (c *Cache) InvalidateSnapshots(ctx context.Context) error {
	for _, window := range snapshotWindows {
		if err := c.Delete(ctx, SnapshotKey(window)); err != nil {
			return err
		}
	}
	return nil
}

// SetQueueDepth publishes the current queue depth gauge
func (c *Cache) SetQueueDepth(ctx context.Context, depth int64) error {
	return c.Set(ctx, "queue:depth", depth, 5*time.Minute)
}

// QueueDepth reads the published queue depth gauge; missing key reads as 0
func (c *Cache) QueueDepth(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, ErrCacheDisabled
	}
	n, err := c.client.Get(ctx, c.NamespaceKey("queue:depth")).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}

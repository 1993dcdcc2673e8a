// Package cache is a read-through cache for data fetched from the store.
//
// Entries are keyed by resource and parameters, dropped when a mutation touches the resource,
// and never treated as the system of record: any entry may be discarded at any time.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store is a byte-oriented key/value backend.
type Store interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Key joins a resource name and its parameters, e.g. Key("products", "sarees") == "products:sarees".
func Key(resource string, params ...string) string {
	if len(params) == 0 {
		return resource
	}
	return resource + ":" + strings.Join(params, ":")
}

// Versioner is implemented by stores that share resource versions between processes.
// Stores without it get versions local to the Cache.
type Versioner interface {
	Version(ctx context.Context, resource string) (int64, error)
	BumpVersion(ctx context.Context, resource string) error
}

// Cache pairs a Store with the TTL and logger used for read-through fetches.
type Cache struct {
	store Store
	ttl   time.Duration
	log   *zap.Logger

	mu       sync.Mutex
	versions map[string]int64
}

// New wraps store. A nil logger disables logging.
func New(store Store, ttl time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{store: store, ttl: ttl, log: log, versions: make(map[string]int64)}
}

// Store exposes the backend for callers that keep their own entries.
func (c *Cache) Store() Store {
	return c.store
}

// resourceOf returns the resource part of a key or prefix: "cart:u1" and "cart:" give "cart".
func resourceOf(key string) string {
	resource, _, _ := strings.Cut(key, ":")
	return resource
}

func (c *Cache) version(ctx context.Context, resource string) (int64, error) {
	if v, ok := c.store.(Versioner); ok {
		return v.Version(ctx, resource)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[resource], nil
}

// bump marks every in-flight load of resource as stale. It runs before the entries are
// deleted so a load that read old rows either sees the new version or has its write removed.
func (c *Cache) bump(ctx context.Context, resource string) {
	if v, ok := c.store.(Versioner); ok {
		if err := v.BumpVersion(ctx, resource); err != nil {
			c.log.Warn("cache version bump failed", zap.String("resource", resource), zap.Error(err))
		}
		return
	}
	c.mu.Lock()
	c.versions[resource]++
	c.mu.Unlock()
}

// Invalidate drops exact keys. Failures are logged; the next read simply refetches or
// serves a stale entry until it expires. Invalidating through a nil Cache is a no-op.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	bumped := make(map[string]bool, len(keys))
	for _, k := range keys {
		if r := resourceOf(k); !bumped[r] {
			c.bump(ctx, r)
			bumped[r] = true
		}
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidatePrefix drops every key starting with prefix. The prefix must start with a
// full resource name, e.g. "products" or "cart:".
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if c == nil {
		return
	}
	c.bump(ctx, resourceOf(prefix))
	if err := c.store.DeletePrefix(ctx, prefix); err != nil {
		c.log.Warn("cache prefix invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

// Fetch returns the cached value for key, or calls load and caches its result.
// Load errors are returned and never cached. Cache backend errors are logged and bypassed.
// A result is not kept when the key's resource was invalidated while load ran.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.log.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	resource := resourceOf(key)
	before, verErr := c.version(ctx, resource)

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if verErr != nil {
		c.log.Warn("cache version read failed", zap.String("key", key), zap.Error(verErr))
		return v, nil
	}
	if !c.unchanged(ctx, resource, before) {
		return v, nil
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if err := c.store.Set(ctx, key, encoded, c.ttl); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	// An invalidation may land between the check and the write.
	if !c.unchanged(ctx, resource, before) {
		if err := c.store.Delete(ctx, key); err != nil {
			c.log.Warn("cache stale write removal failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

func (c *Cache) unchanged(ctx context.Context, resource string, before int64) bool {
	now, err := c.version(ctx, resource)
	return err == nil && now == before
}

package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/geoext/internal/core/ports"
)

// DefaultPrefix namespaces every key written by geoext.
const DefaultPrefix = "geoext:"

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix replaces DefaultPrefix.
func WithPrefix(p string) Option {
	return func(c *Cache) { c.prefix = p }
}

// WithClientCache keeps reads in process memory for up to ttl, using
// server-assisted invalidation so a DEL on any replica evicts the local
// copy. A zero ttl disables it, which is required for servers without RESP3.
func WithClientCache(ttl time.Duration) Option {
	return func(c *Cache) { c.local = ttl }
}

// Cache implements ports.CacheService on Valkey.
type Cache struct {
	client valkey.Client
	prefix string
	local  time.Duration
}

// New connects to addr.
func New(addr string, opts ...Option) (*Cache, error) {
	c := &Cache{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(c)
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: c.local <= 0,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	c.client = client
	return c, nil
}

// Get returns ports.ErrCacheMiss for absent keys.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	var resp valkey.ValkeyResult
	if c.local > 0 {
		resp = c.client.DoCache(ctx, c.client.B().Get().Key(c.prefix+key).Cache(), c.local)
	} else {
		resp = c.client.Do(ctx, c.client.B().Get().Key(c.prefix+key).Build())
	}

	b, err := resp.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return b, nil
}

// Set stores value for ttlSeconds. A non-positive ttl stores without expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	set := c.client.B().Set().Key(c.prefix + key).Value(valkey.BinaryString(value))
	var cmd valkey.Completed
	if ttlSeconds > 0 {
		cmd = set.Ex(time.Duration(ttlSeconds) * time.Second).Build()
	} else {
		cmd = set.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

// Delete drops all keys in one round trip.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return c.client.Do(ctx, c.client.B().Del().Key(full...).Build()).Error()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

func (c *Cache) Close() {
	c.client.Close()
}

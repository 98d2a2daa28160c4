package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"natours/internal/logging"
)

// Client wraps redis.Client but fails safe by swallowing connectivity errors.
// A nil *Client behaves as an always-empty cache, as does a client whose
// last ping failed.
type Client struct {
	client  *redis.Client
	prefix  string
	healthy atomic.Bool
}

// New creates a new Redis client whose keys are namespaced under prefix.
func New(addr, password string, db int, prefix string) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	c := &Client{client: redis.NewClient(opts), prefix: prefix}
	c.healthy.Store(true)
	return c
}

func (c *Client) key(k string) string {
	return c.prefix + k
}

func (c *Client) usable() bool {
	return c != nil && c.client != nil && c.healthy.Load()
}

// Available reports whether reads and writes currently reach redis.
func (c *Client) Available() bool {
	return c.usable()
}

// Ping reports whether redis is reachable and records the result.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Ping(ctx).Err()
	c.healthy.Store(err == nil)
	return err
}

// Monitor pings redis every interval until ctx is done, switching the cache
// off while redis is unreachable and back on once it answers again.
func (c *Client) Monitor(ctx context.Context, interval time.Duration, logger *slog.Logger) error {
	if c == nil || c.client == nil {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		was := c.healthy.Load()
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		err := c.Ping(pingCtx)
		cancel()

		switch {
		case err != nil && was:
			logger.Warn("redis unreachable, cache disabled", logging.Err(err))
		case err == nil && !was:
			logger.Info("redis reachable again, cache enabled")
		}
	}
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.usable() {
		return nil, nil
	}
	res, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		// redis.Nil and outages both read as a miss
		return nil, nil
	}
	return res, nil
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.usable() {
		return nil
	}
	_ = c.client.Set(ctx, c.key(key), value, ttl).Err()
	return nil
}

// Delete removes keys, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	_ = c.client.Del(ctx, full...).Err()
	return nil
}

// GetJSON decodes a cached value into dst and reports whether it was found.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) bool {
	data, _ := c.Get(ctx, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON encodes v and stores it with TTL. Encoding failures skip the write.
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, payload, ttl)
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

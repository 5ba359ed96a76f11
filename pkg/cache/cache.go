// Package cache provides a JSON-valued Redis cache and event publisher.
// When no Redis URL is configured a no-op implementation is returned, so
// callers never branch on whether caching is enabled.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/wastewise/pkg/lifecycle"
)

// System reads and writes JSON values under namespaced keys and publishes
// JSON events.
type System interface {
	// Start registers readiness and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Enabled reports whether a backing store is configured.
	Enabled() bool
	// Get decodes the value at key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value at key with the configured TTL.
	Set(ctx context.Context, key string, value any) error
	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error
	// Publish sends value as a JSON message on channel.
	Publish(ctx context.Context, channel string, value any) error
	// Key joins parts under the configured prefix with ':'.
	Key(parts ...string) string
}

// New creates a cache system. It returns a no-op System when cfg.URL is empty.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.URL == "" {
		return &disabled{prefix: cfg.Prefix}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &redisCache{
		client: redis.NewClient(opts),
		ttl:    cfg.TTLDuration(),
		prefix: cfg.Prefix,
		logger: logger.With("system", "cache"),
	}, nil
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func (c *redisCache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting cache system")

	lc.OnStartup(func() {
		if err := c.client.Ping(lc.Context()).Err(); err != nil {
			c.logger.Error("redis ping failed", "error", err)
			return
		}
		c.logger.Info("redis connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := c.client.Close(); err != nil {
			c.logger.Error("redis close failed", "error", err)
			return
		}
		c.logger.Info("redis connection closed")
	})

	lc.AddCheck("cache", func(ctx context.Context) error {
		return c.client.Ping(ctx).Err()
	})

	return nil
}

func (c *redisCache) Enabled() bool { return true }

func (c *redisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Publish(ctx context.Context, channel string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, channel, data).Err()
}

func (c *redisCache) Key(parts ...string) string {
	return joinKey(c.prefix, parts)
}

type disabled struct {
	prefix string
}

func (d *disabled) Start(*lifecycle.Coordinator) error             { return nil }
func (d *disabled) Enabled() bool                                  { return false }
func (d *disabled) Get(context.Context, string, any) (bool, error) { return false, nil }
func (d *disabled) Set(context.Context, string, any) error         { return nil }
func (d *disabled) Delete(context.Context, ...string) error        { return nil }
func (d *disabled) Publish(context.Context, string, any) error     { return nil }
func (d *disabled) Key(parts ...string) string                     { return joinKey(d.prefix, parts) }

func joinKey(prefix string, parts []string) string {
	if prefix == "" {
		return strings.Join(parts, ":")
	}
	return prefix + ":" + strings.Join(parts, ":")
}

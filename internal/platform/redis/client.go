// Package redis connects the Redis instance shared by the revocation list and
// the rate-limit buckets.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"certifly/internal/platform/config"
)

type Client struct {
	*redis.Client
}

// New connects and pings. Returns nil when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	c := &Client{Client: redis.NewClient(opts)}
	if err := c.Health(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return c, nil
}

// clientOptions starts from the URL and applies the pool settings that are set.
func clientOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	for _, d := range []struct {
		dst *time.Duration
		src time.Duration
	}{
		{&opts.DialTimeout, cfg.DialTimeout},
		{&opts.ReadTimeout, cfg.ReadTimeout},
		{&opts.WriteTimeout, cfg.WriteTimeout},
	} {
		if d.src > 0 {
			*d.dst = d.src
		}
	}
	return opts, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RegisterPoolMetrics exposes connection pool statistics on reg.
func (c *Client) RegisterPoolMetrics(reg prometheus.Registerer) {
	stat := func(name, help string, read func(*redis.PoolStats) uint32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "certifly_redis_pool_" + name,
			Help: help,
		}, func() float64 {
			return float64(read(c.PoolStats()))
		})
	}
	reg.MustRegister(
		stat("total_conns", "Connections currently in the pool", func(s *redis.PoolStats) uint32 { return s.TotalConns }),
		stat("idle_conns", "Idle connections in the pool", func(s *redis.PoolStats) uint32 { return s.IdleConns }),
		stat("hits", "Times a free connection was found in the pool", func(s *redis.PoolStats) uint32 { return s.Hits }),
		stat("timeouts", "Times a wait for a connection timed out", func(s *redis.PoolStats) uint32 { return s.Timeouts }),
	)
}

// Package redis implements the domain repositories on the shared
// TTL-capable store. A universal client covers standalone, cluster and
// sentinel deployments.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/authcore/internal/config"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/logger"
)

// Connection owns the client lifecycle and applies the store timeout to
// every round-trip.
type Connection struct {
	client       redis.UniversalClient
	storeTimeout time.Duration
	log          logger.Logger
}

// NewConnection dials the store and verifies connectivity with a ping.
func NewConnection(cfg config.RedisConfig, log logger.Logger) (*Connection, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	storeTimeout := cfg.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = constants.StoreTimeoutDefault
	}

	log.Info(ctx, "redis connection established",
		logger.Any("addresses", cfg.Addresses),
		logger.Duration("store_timeout", storeTimeout),
	)
	return &Connection{
		client:       client,
		storeTimeout: storeTimeout,
		log:          log.WithComponent("redis"),
	}, nil
}

// NewConnectionFromClient wraps an existing client. Used by tests running
// against miniredis.
func NewConnectionFromClient(client redis.UniversalClient, storeTimeout time.Duration, log logger.Logger) *Connection {
	if storeTimeout <= 0 {
		storeTimeout = constants.StoreTimeoutDefault
	}
	return &Connection{client: client, storeTimeout: storeTimeout, log: log.WithComponent("redis")}
}

// Client exposes the underlying client for repository construction.
func (c *Connection) Client() redis.UniversalClient { return c.client }

// withTimeout derives the bounded context every store call runs under.
func (c *Connection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.storeTimeout)
}

// Ping checks store connectivity.
func (c *Connection) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// HealthCheck reports connectivity and pool statistics.
func (c *Connection) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	health := make(map[string]interface{})

	start := time.Now()
	err := c.Ping(ctx)
	health["connected"] = err == nil
	health["latency_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		health["error"] = err.Error()
		return health, err
	}

	stats := c.client.PoolStats()
	health["total_conns"] = stats.TotalConns
	health["idle_conns"] = stats.IdleConns
	health["pool_timeouts"] = stats.Timeouts
	return health, nil
}

// Close releases the client.
func (c *Connection) Close() error {
	return c.client.Close()
}

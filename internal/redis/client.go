// Package redis caches the most recent target sample and mount snapshot so
// external tooling can read the simulators' latest state without joining
// either stream. Only the latest state is kept; no history.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saviobatista/pointing-sim/internal/types"
)

const (
	keyTargetLatest = "target:latest"
	keyMountLatest  = "mount:latest"

	stateTTL = time.Hour
)

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client manages Redis connections and operations
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// setJSON marshals value and stores it under key with the state TTL.
func (c *Client) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, stateTTL).Err()
}

// getJSON retrieves data from Redis and unmarshals it into the target.
// A missing key leaves target untouched and returns found=false.
func (c *Client) getJSON(ctx context.Context, key string, target interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// StoreTargetState stores the latest target sample.
func (c *Client) StoreTargetState(ctx context.Context, state *types.TargetState) error {
	return c.setJSON(ctx, keyTargetLatest, state)
}

// GetTargetState retrieves the latest target sample; nil when absent.
func (c *Client) GetTargetState(ctx context.Context) (*types.TargetState, error) {
	var state types.TargetState
	found, err := c.getJSON(ctx, keyTargetLatest, &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

// DeleteTargetState removes the cached target sample.
func (c *Client) DeleteTargetState(ctx context.Context) error {
	return c.client.Del(ctx, keyTargetLatest).Err()
}

// StoreMountState stores the latest mount snapshot.
func (c *Client) StoreMountState(ctx context.Context, snapshot *types.MountSnapshot) error {
	return c.setJSON(ctx, keyMountLatest, snapshot)
}

// GetMountState retrieves the latest mount snapshot; nil when absent.
func (c *Client) GetMountState(ctx context.Context) (*types.MountSnapshot, error) {
	var snapshot types.MountSnapshot
	found, err := c.getJSON(ctx, keyMountLatest, &snapshot)
	if err != nil || !found {
		return nil, err
	}
	return &snapshot, nil
}

// DeleteMountState removes the cached mount snapshot.
func (c *Client) DeleteMountState(ctx context.Context) error {
	return c.client.Del(ctx, keyMountLatest).Err()
}

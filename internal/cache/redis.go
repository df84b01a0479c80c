package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs per cached surface. Everything is overwrite-on-expiry; nothing is
// invalidated early except by the recalculate flags.
const (
	DvPTTL        = 12 * time.Hour
	DepthChartTTL = 24 * time.Hour
	SlateTTL      = 60 * time.Second
	AFLTTL        = 6 * time.Hour
)

// RedisCache handles caching and fast state storage
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Set stores a key-value pair with TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value by key
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// Delete removes a key
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}

// SetJSON marshals value and stores it under key with TTL
func (rc *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return rc.client.Set(ctx, key, data, ttl).Err()
}

// GetJSON loads key into dest. The bool reports whether the key existed;
// a miss is not an error.
func (rc *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshaling %s: %w", key, err)
	}
	return true, nil
}

// Key builders. Everything this service writes lives under augur:.

func DvPKey(team string, seasonStart, games int) string {
	return fmt.Sprintf("augur:dvp:%s:%d:%d", strings.ToUpper(team), seasonStart, games)
}

func DepthChartKey() string {
	return "augur:depthcharts"
}

func SlateKey(date time.Time) string {
	return "augur:slate:" + date.Format("2006-01-02")
}

func AFLFixturesKey(year int) string {
	return fmt.Sprintf("augur:afl:fixtures:%d", year)
}

func AFLLadderKey() string {
	return "augur:afl:ladder"
}

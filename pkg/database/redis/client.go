package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisV9 "github.com/redis/go-redis/v9"

	"github.com/huynhanx03/servicequeue/pkg/settings"
)

const (
	defaultPoolSize        = 10
	defaultMinIdleConns    = 5
	defaultPoolTimeout     = 5
	defaultDialTimeout     = 5
	defaultReadTimeout     = 3
	defaultWriteTimeout    = 3
	defaultMaxRetries      = 3
	defaultMinRetryBackoff = 300 // millis
	defaultMaxRetryBackoff = 500 // millis
)

type RedisEngine struct {
	client *redisV9.Client
	config *settings.Redis
}

// connect initializes the Redis client
func (r *RedisEngine) connect() error {
	r.setDefaultConfig()

	// Build address
	addr := r.config.Host
	if r.config.Port > 0 {
		addr = fmt.Sprintf("%s:%d", addr, r.config.Port)
	}

	r.client = redisV9.NewClient(&redisV9.Options{
		Addr:            addr,
		Password:        r.config.Password,
		DB:              r.config.Database,
		PoolSize:        r.config.PoolSize,
		MinIdleConns:    r.config.MinIdleConns,
		MaxRetries:      r.config.MaxRetries,
		DialTimeout:     time.Duration(r.config.DialTimeout) * time.Second,
		ReadTimeout:     time.Duration(r.config.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(r.config.WriteTimeout) * time.Second,
		PoolTimeout:     time.Duration(r.config.PoolTimeout) * time.Second,
		MinRetryBackoff: time.Duration(r.config.MinRetryBackoff) * time.Millisecond,
		MaxRetryBackoff: time.Duration(r.config.MaxRetryBackoff) * time.Millisecond,
	})

	// Ping test
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPingFailed, err)
	}

	return nil
}

// setDefaultConfig sets default values for Redis configuration
func (r *RedisEngine) setDefaultConfig() {
	if r.config.PoolSize == 0 {
		r.config.PoolSize = defaultPoolSize
	}
	if r.config.MinIdleConns == 0 {
		r.config.MinIdleConns = defaultMinIdleConns
	}
	if r.config.PoolTimeout == 0 {
		r.config.PoolTimeout = defaultPoolTimeout
	}
	if r.config.DialTimeout == 0 {
		r.config.DialTimeout = defaultDialTimeout
	}
	if r.config.ReadTimeout == 0 {
		r.config.ReadTimeout = defaultReadTimeout
	}
	if r.config.WriteTimeout == 0 {
		r.config.WriteTimeout = defaultWriteTimeout
	}
	if r.config.MaxRetries == 0 {
		r.config.MaxRetries = defaultMaxRetries
	}
	if r.config.MinRetryBackoff == 0 {
		r.config.MinRetryBackoff = defaultMinRetryBackoff
	}
	if r.config.MaxRetryBackoff == 0 {
		r.config.MaxRetryBackoff = defaultMaxRetryBackoff
	}
}

// Get value by key. A missing key returns ok == false and a nil error.
func (r *RedisEngine) Get(ctx context.Context, key string) ([]byte, bool, error) {
	byteValue, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redisV9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return byteValue, true, nil
}

// Set stores value as JSON under key. A zero ttl keeps the key forever.
func (r *RedisEngine) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	byteValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, byteValue, ttl).Err()
}

// Delete key
func (r *RedisEngine) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// PushCapped prepends values to the list at key and trims it to the newest max entries,
// in one pipeline. max <= 0 leaves the list untrimmed.
func (r *RedisEngine) PushCapped(ctx context.Context, key string, max int64, values ...[]byte) error {
	if len(values) == 0 {
		return nil
	}

	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, key, args...)
	if max > 0 {
		pipe.LTrim(ctx, key, 0, max-1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Range returns up to n newest entries of the list at key.
func (r *RedisEngine) Range(ctx context.Context, key string, n int64) ([][]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	vals, err := r.client.LRange(ctx, key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// Close closes the Redis client
func (r *RedisEngine) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps snapshots in Redis, one string key per store, with no TTL.
// Use it when the storefront runs as more than one process and the stores
// should survive any one of them restarting.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage connects to addr. Keys are written as prefix+name.
func NewRedisStorage(addr, password, prefix string) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: prefix,
	}
}

// Ping checks the connection; used at startup to fail fast on a bad address.
func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("persist: pinging redis: %w", err)
	}
	return nil
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("persist: redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("persist: redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the client's connection pool.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

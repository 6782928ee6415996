package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed incr_with_ttl.lua
var incrWithTTLLua string

//go:embed compare_and_swap.lua
var compareAndSwapLua string

var (
	incrWithTTLScript    = redis.NewScript(incrWithTTLLua)
	compareAndSwapScript = redis.NewScript(compareAndSwapLua)
)

// Redis implements Store on a shared Redis instance. The two compound
// operations (IncrWithTTL, CompareAndSwap) run as Lua scripts so they stay
// atomic across multiple front-end and worker processes.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *Redis) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl).Result()
}

func (r *Redis) CompareAndSwap(ctx context.Context, key string, old, new []byte) (bool, error) {
	res, err := compareAndSwapScript.Run(ctx, r.client, []string{key}, old, new).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return incrWithTTLScript.Run(ctx, r.client, []string{key}, ttl.Milliseconds()).Int64()
}

func (r *Redis) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// Redis reports -2 for missing keys and -1 for keys without expiry.
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

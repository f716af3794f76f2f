package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wallboard/wallboard-server/internal/model"
)

var _ model.KeyValue = (*Redis)(nil)

// Redis is the networked key-value backend. TTLs are enforced server-side;
// individual commands are atomic but sequences of commands are not.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-connected client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, storeErr("exists", key, err)
	}
	return n > 0, nil
}

func (r *Redis) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return storeErr("set", key, err)
	}
	return nil
}

func (r *Redis) GetString(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrKeyNotFound
		}
		return "", storeErr("get", key, err)
	}
	return value, nil
}

func (r *Redis) SetFields(ctx context.Context, key string, fields map[string]string) error {
	args := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		args[k] = v
	}
	if err := r.client.HSet(ctx, key, args).Err(); err != nil {
		return storeErr("hset", key, err)
	}
	return nil
}

func (r *Redis) GetFields(ctx context.Context, key string) (map[string]string, error) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, storeErr("hgetall", key, err)
	}
	return fields, nil
}

func (r *Redis) AddToSet(ctx context.Context, key, member string) (bool, error) {
	added, err := r.client.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, storeErr("sadd", key, err)
	}
	return added > 0, nil
}

func (r *Redis) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, storeErr("smembers", key, err)
	}
	return members, nil
}

func (r *Redis) RemoveFromSet(ctx context.Context, key, member string) (bool, error) {
	removed, err := r.client.SRem(ctx, key, member).Result()
	if err != nil {
		return false, storeErr("srem", key, err)
	}
	return removed > 0, nil
}

func (r *Redis) DeleteKeys(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	removed, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, storeErr("del", keys[0], err)
	}
	return int(removed), nil
}

func (r *Redis) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	counter, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, storeErr("incr", key, err)
	}
	if counter == 1 && ttl > 0 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, storeErr("expire", key, err)
		}
	}
	return counter, nil
}

func storeErr(op, key string, err error) error {
	return fmt.Errorf("redis %s %q: %w: %w", op, key, model.ErrStoreUnavailable, err)
}

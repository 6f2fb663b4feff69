package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const backendRedis = "redis"

// RedisCollection is a Collection stored as a Redis hash of JSON values
// (ID -> entity) plus a list recording insertion order.
type RedisCollection[E Entity] struct {
	redis *redis.Client
	key   CollectionKey
}

// NewRedisCollection creates a collection at key.
func NewRedisCollection[E Entity](redisClient *redis.Client, key CollectionKey) *RedisCollection[E] {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisCollection[E]{
		redis: redisClient,
		key:   key,
	}
}

// All returns every entity in insertion order.
func (c *RedisCollection[E]) All(ctx context.Context) ([]E, error) {
	ids, err := c.redis.LRange(ctx, c.key.orderKey(), 0, -1).Result()
	if err != nil {
		observe(backendRedis, c.key.Collection, "all", err)
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	if len(ids) == 0 {
		observe(backendRedis, c.key.Collection, "all", nil)
		return []E{}, nil
	}

	values, err := c.redis.HMGet(ctx, c.key.String(), ids...).Result()
	if err != nil {
		observe(backendRedis, c.key.Collection, "all", err)
		return nil, fmt.Errorf("redis hmget: %w", err)
	}

	out := make([]E, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// order list ahead of the hash; skip
			continue
		}
		e, err := decode[E](s)
		if err != nil {
			observe(backendRedis, c.key.Collection, "all", err)
			return nil, err
		}
		out = append(out, e)
	}

	observe(backendRedis, c.key.Collection, "all", nil)
	return out, nil
}

// Get returns the entity with the given ID.
func (c *RedisCollection[E]) Get(ctx context.Context, id string) (E, error) {
	var zero E

	data, err := c.redis.HGet(ctx, c.key.String(), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			observe(backendRedis, c.key.Collection, "get", nil)
			return zero, ErrNotFound
		}
		observe(backendRedis, c.key.Collection, "get", err)
		return zero, fmt.Errorf("redis hget: %w", err)
	}

	e, err := decode[E](data)
	observe(backendRedis, c.key.Collection, "get", err)
	if err != nil {
		return zero, err
	}
	return e, nil
}

// Replace clears the collection and writes items in one MULTI/EXEC block.
func (c *RedisCollection[E]) Replace(ctx context.Context, items []E) error {
	fields, ids, err := encodeAll(items)
	if err != nil {
		observe(backendRedis, c.key.Collection, "replace", err)
		return err
	}

	_, err = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key.String(), c.key.orderKey())
		if len(fields) > 0 {
			pipe.HSet(ctx, c.key.String(), fields...)
			pipe.RPush(ctx, c.key.orderKey(), ids...)
		}
		return nil
	})
	observe(backendRedis, c.key.Collection, "replace", err)
	if err != nil {
		return fmt.Errorf("redis replace: %w", err)
	}

	StoreEntities.WithLabelValues(backendRedis, c.key.Collection).Set(float64(len(ids)))
	return nil
}

// Upsert writes items, moving each ID to the end of the insertion order.
func (c *RedisCollection[E]) Upsert(ctx context.Context, items ...E) error {
	if len(items) == 0 {
		return nil
	}

	fields, ids, err := encodeAll(items)
	if err != nil {
		observe(backendRedis, c.key.Collection, "upsert", err)
		return err
	}

	_, err = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, c.key.String(), fields...)
		for _, id := range ids {
			pipe.LRem(ctx, c.key.orderKey(), 0, id)
		}
		pipe.RPush(ctx, c.key.orderKey(), ids...)
		return nil
	})
	observe(backendRedis, c.key.Collection, "upsert", err)
	if err != nil {
		return fmt.Errorf("redis upsert: %w", err)
	}
	return nil
}

// Clear removes the collection.
func (c *RedisCollection[E]) Clear(ctx context.Context) error {
	err := c.redis.Del(ctx, c.key.String(), c.key.orderKey()).Err()
	observe(backendRedis, c.key.Collection, "clear", err)
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func encodeAll[E Entity](items []E) (fields []interface{}, ids []interface{}, err error) {
	items = dedupByID(items)
	fields = make([]interface{}, 0, len(items)*2)
	ids = make([]interface{}, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal entity %s: %w", item.StoreID(), err)
		}
		fields = append(fields, item.StoreID(), string(data))
		ids = append(ids, item.StoreID())
	}
	return fields, ids, nil
}

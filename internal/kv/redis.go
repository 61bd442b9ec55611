package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// maxUpdateAttempts bounds the optimistic retries of Update.
const maxUpdateAttempts = 16

// Redis stores values as plain redis strings under a key prefix.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps a connected client. prefix is prepended to every key.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Update runs fn under WATCH and writes the result in a MULTI/EXEC block,
// retrying when another client modified the key in between.
func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := r.prefix + key
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var fnErr error
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			old, err := tx.Get(ctx, k).Result()
			ok := true
			if errors.Is(err, redis.Nil) {
				ok = false
			} else if err != nil {
				return err
			}

			next, err := fn(old, ok)
			if err != nil {
				fnErr = err
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, k, next, 0)
				return nil
			})
			return err
		}, k)

		switch {
		case fnErr != nil:
			return fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		case err != nil:
			return fmt.Errorf("redis update %s: %w", key, err)
		default:
			return nil
		}
	}
	return fmt.Errorf("redis update %s: %w", key, ErrConflict)
}

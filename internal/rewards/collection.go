package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/notepid/roadwatch/internal/kv"
)

// Collection keys in the backing store.
const (
	KeyUsers        = "users"
	KeyHazards      = "hazards"
	KeySpeedRecords = "speedRecords"
	KeyRedemptions  = "redemptions"
)

var collectionKeys = []string{KeyUsers, KeyHazards, KeySpeedRecords, KeyRedemptions}

// errNoChange aborts an updateList without writing and without failing.
var errNoChange = errors.New("no change")

// loadList reads a JSON array stored under key. A missing key reads as empty.
func loadList[T any](ctx context.Context, store kv.Store, key string) ([]T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decodeList[T](key, raw, ok)
}

// updateList rewrites the list under key with fn's result in one backend
// transaction. fn may run more than once if another writer got in first, so
// it must only derive its result from the list it is given. Errors from fn
// are returned unchanged; errNoChange leaves the list as it was.
func updateList[T any](ctx context.Context, store kv.Store, key string, fn func([]T) ([]T, error)) error {
	err := store.Update(ctx, key, func(raw string, ok bool) (string, error) {
		items, err := decodeList[T](key, raw, ok)
		if err != nil {
			return "", err
		}
		items, err = fn(items)
		if err != nil {
			return "", err
		}
		return encodeList(key, items)
	})
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}

func decodeList[T any](key, raw string, ok bool) ([]T, error) {
	items := []T{}
	if !ok || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func encodeList[T any](key string, items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", key, err)
	}
	return string(data), nil
}

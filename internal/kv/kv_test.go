package kv

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notepid/roadwatch/internal/config"
	"github.com/notepid/roadwatch/internal/db"
	"github.com/notepid/roadwatch/internal/logger"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "kv.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": NewSQLite(database),
		"redis":  NewRedis(client, "test:"),
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx, "hazards")
			require.NoError(t, err)
			assert.False(t, ok, "missing key should report ok=false")

			require.NoError(t, store.Set(ctx, "hazards", "[]"))
			v, ok, err := store.Get(ctx, "hazards")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "[]", v)

			require.NoError(t, store.Set(ctx, "hazards", `[{"id":7}]`))
			v, _, err = store.Get(ctx, "hazards")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":7}]`, v)

			require.NoError(t, store.Delete(ctx, "hazards"))
			_, ok, err = store.Get(ctx, "hazards")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Delete(ctx, "never-set"))
		})
	}
}

func TestUpdateContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Update(ctx, "users", func(old string, ok bool) (string, error) {
				assert.False(t, ok)
				assert.Empty(t, old)
				return "[]", nil
			}))

			require.NoError(t, store.Update(ctx, "users", func(old string, ok bool) (string, error) {
				assert.True(t, ok)
				assert.Equal(t, "[]", old)
				return `[{"id":1}]`, nil
			}))

			boom := errors.New("boom")
			err := store.Update(ctx, "users", func(string, bool) (string, error) { return "", boom })
			require.ErrorIs(t, err, boom)
			assert.Equal(t, boom, err, "fn errors are returned unwrapped")

			v, _, err := store.Get(ctx, "users")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":1}]`, v)
		})
	}
}

func increment(old string, _ bool) (string, error) {
	if old == "" {
		old = "0"
	}
	n, err := strconv.Atoi(old)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n + 1), nil
}

func TestRedisUpdateAcrossClients(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	var stores []*Redis
	for range 2 {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		stores = append(stores, NewRedis(client, "roadwatch:"))
	}

	const perWriter = 20
	var wg sync.WaitGroup
	for _, s := range stores {
		wg.Add(1)
		go func(s *Redis) {
			defer wg.Done()
			for range perWriter {
				assert.NoError(t, s.Update(ctx, "counter", increment))
			}
		}(s)
	}
	wg.Wait()

	got, err := mr.Get("roadwatch:counter")
	require.NoError(t, err)
	n, err := strconv.Atoi(got)
	require.NoError(t, err)
	assert.Equal(t, 2*perWriter, n)
}

func TestRedisUpdateRetriesAfterConcurrentWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedis(client, "roadwatch:")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "counter", "0"))

	calls := 0
	err := store.Update(ctx, "counter", func(old string, ok bool) (string, error) {
		calls++
		if calls == 1 {
			// Another writer lands between our read and our EXEC.
			require.NoError(t, mr.Set("roadwatch:counter", "10"))
		}
		return increment(old, ok)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	got, err := mr.Get("roadwatch:counter")
	require.NoError(t, err)
	assert.Equal(t, "11", got)
}

func TestRedisUsesKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedis(client, "roadwatch:")
	require.NoError(t, store.Set(context.Background(), "users", "[]"))

	got, err := mr.Get("roadwatch:users")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()

	t.Run("memory", func(t *testing.T) {
		store, cleanup, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory}, log)
		require.NoError(t, err)
		defer cleanup()
		assert.IsType(t, &Memory{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		store, cleanup, err := Open(ctx, config.StorageConfig{
			Backend:  config.BackendSQLite,
			Data:     filepath.Join(dir, "data"),
			Database: filepath.Join(dir, "data", "roadwatch.db"),
		}, log)
		require.NoError(t, err)
		defer cleanup()
		assert.IsType(t, &SQLite{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, cleanup, err := Open(ctx, config.StorageConfig{
			Backend: config.BackendRedis,
			Redis:   config.RedisConfig{Addr: mr.Addr()},
		}, log)
		require.NoError(t, err)
		defer cleanup()
		assert.IsType(t, &Redis{}, store)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := Open(ctx, config.StorageConfig{Backend: "tape"}, log)
		require.Error(t, err)
	})
}

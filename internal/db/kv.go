package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetValue returns the value stored under key. ok is false when the key is absent.
func (db *DB) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get value %s: %w", key, err)
	}
	return value, true, nil
}

// PutValue overwrites the value stored under key.
func (db *DB) PutValue(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put value %s: %w", key, err)
	}
	return nil
}

// DeleteValue removes key. Deleting a missing key is not an error.
func (db *DB) DeleteValue(ctx context.Context, key string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete value %s: %w", key, err)
	}
	return nil
}

// UpdateValue reads key and writes fn's result inside a BEGIN IMMEDIATE
// transaction, so other connections and processes writing the same database
// wait for it. fn receives ok=false when the key is absent; an error from fn
// rolls back and is returned unchanged.
func (db *DB) UpdateValue(ctx context.Context, key string, fn func(old string, ok bool) (string, error)) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("update value %s: %w", key, err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("update value %s: begin: %w", key, err)
	}
	committed := false
	defer func() {
		if !committed {
			if _, rbErr := conn.ExecContext(context.Background(), "ROLLBACK"); rbErr != nil {
				db.log.Warn("rollback failed", "key", key, "err", rbErr)
			}
		}
	}()

	var old string
	ok := true
	switch err := conn.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&old); {
	case errors.Is(err, sql.ErrNoRows):
		ok = false
	case err != nil:
		return fmt.Errorf("update value %s: read: %w", key, err)
	}

	next, err := fn(old, ok)
	if err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, next, time.Now().UTC()); err != nil {
		return fmt.Errorf("update value %s: write: %w", key, err)
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("update value %s: commit: %w", key, err)
	}
	committed = true
	return nil
}

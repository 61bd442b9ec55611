package kv

import (
	"context"

	"github.com/notepid/roadwatch/internal/db"
)

// SQLite stores values in the kv table of a migrated database.
type SQLite struct {
	db *db.DB
}

// NewSQLite wraps an open database.
func NewSQLite(d *db.DB) *SQLite {
	return &SQLite{db: d}
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	return s.db.GetValue(ctx, key)
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	return s.db.PutValue(ctx, key, value)
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.db.DeleteValue(ctx, key)
}

func (s *SQLite) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.db.UpdateValue(ctx, key, fn)
}
